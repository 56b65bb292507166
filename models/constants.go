package models

// Booking statuses
const (
	BookingStatusPending  = "pending"
	BookingStatusAccepted = "accepted"
	BookingStatusRejected = "rejected"
)

// Swipe directions
const (
	SwipeDirectionLeft  = "left"
	SwipeDirectionRight = "right"
)

// Feed partition value for items currently offered to swipers
const FeedPartitionOpen = "open"
