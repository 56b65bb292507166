package models

import "time"

// BookedChunk is one base chunk claimed inside an availability window.
// Instants are stored as RFC3339 strings.
type BookedChunk struct {
	Start     string `dynamodbav:"start" json:"start"`
	End       string `dynamodbav:"end" json:"end"`
	BookedBy  string `dynamodbav:"bookedBy" json:"bookedBy"`
	ServiceID string `dynamodbav:"serviceId" json:"serviceId"`
}

// AvailabilityWindow is an expert-declared time range on one calendar day.
// Its bookedChunks list is mutated only inside booking transactions, under
// the version condition.
type AvailabilityWindow struct {
	OwnerID      string        `dynamodbav:"ownerId" json:"ownerId"` // Partition Key
	SK           string        `dynamodbav:"sk" json:"-"`            // Sort Key: "date#windowId"
	WindowID     string        `dynamodbav:"windowId" json:"windowId"`
	Date         string        `dynamodbav:"date" json:"date"` // YYYY-MM-DD
	Start        string        `dynamodbav:"start" json:"start"`
	End          string        `dynamodbav:"end" json:"end"`
	BookedChunks []BookedChunk `dynamodbav:"bookedChunks" json:"bookedChunks"`
	FullyBooked  bool          `dynamodbav:"fullyBooked" json:"fullyBooked"`
	Version      int64         `dynamodbav:"version" json:"-"`
	CreatedAt    string        `dynamodbav:"createdAt" json:"createdAt"`
}

// WindowSortKey builds the composite sort key for a window.
func WindowSortKey(date, windowID string) string {
	return date + "#" + windowID
}

// SlotChunk is one base chunk of a candidate slot, tagged with the window
// it was cut from.
type SlotChunk struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	WindowID string    `json:"-"`
}

// CandidateSlot is a contiguous run of free base chunks proposed to host
// one service. It is derived at read time and never persisted; holding one
// is a hint, not a reservation.
type CandidateSlot struct {
	WindowID string      `json:"windowId"`
	Date     string      `json:"date"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	Chunks   []SlotChunk `json:"chunks"`
}

// AvailabilityWindowsTable is the DynamoDB table for expert availability
const AvailabilityWindowsTable = "AvailabilityWindows"
