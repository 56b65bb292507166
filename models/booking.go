package models

// Booking is one confirmed claim of a candidate slot. Created exactly once
// per successful transaction; status transitions are expert-driven.
type Booking struct {
	BookingID   string            `dynamodbav:"bookingId" json:"bookingId"` // Partition Key
	UserID      string            `dynamodbav:"userId" json:"userId"`
	ExpertID    string            `dynamodbav:"expertId" json:"expertId"`
	ServiceID   string            `dynamodbav:"serviceId" json:"serviceId"`
	WindowID    string            `dynamodbav:"windowId" json:"windowId"`
	Date        string            `dynamodbav:"date" json:"date"`
	Start       string            `dynamodbav:"start" json:"start"`
	End         string            `dynamodbav:"end" json:"end"`
	Status      string            `dynamodbav:"status" json:"status"` // pending, accepted, rejected
	CreatedAt   string            `dynamodbav:"createdAt" json:"createdAt"`
	LastUpdated string            `dynamodbav:"lastUpdated" json:"lastUpdated"`
	Metadata    map[string]string `dynamodbav:"metadata,omitempty" json:"metadata,omitempty"` // open extension map, never read by the allocator
}

// ChunkClaim is the per-chunk booking ledger entry. One item exists per
// booked base chunk; the conditional put on its key is what makes two
// overlapping bookings mutually exclusive.
type ChunkClaim struct {
	ClaimKey   string `dynamodbav:"claimKey" json:"claimKey"`     // Partition Key: "expertId#date"
	ChunkStart string `dynamodbav:"chunkStart" json:"chunkStart"` // Sort Key: RFC3339 chunk start
	ChunkEnd   string `dynamodbav:"chunkEnd" json:"chunkEnd"`
	BookingID  string `dynamodbav:"bookingId" json:"bookingId"`
	WindowID   string `dynamodbav:"windowId" json:"windowId"`
	BookedBy   string `dynamodbav:"bookedBy" json:"bookedBy"`
	ServiceID  string `dynamodbav:"serviceId" json:"serviceId"`
}

// ClaimKey builds the chunk-claim partition key for an expert's day.
func ClaimKey(expertID, date string) string {
	return expertID + "#" + date
}

// BookingsTable is the DynamoDB table for bookings
const BookingsTable = "Bookings"

// BookedChunksTable is the DynamoDB table for per-chunk booking claims
const BookedChunksTable = "BookedChunks"

// BookingExpertDateIndex is the GSI for querying an expert's bookings by day
const BookingExpertDateIndex = "expertId-date-index"
