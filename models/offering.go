package models

// ServiceOffering is a bookable service an expert sells. Immutable once a
// booking references it; durationMinutes must be a positive multiple of
// the base chunk, enforced at creation time.
type ServiceOffering struct {
	OfferingID      string            `dynamodbav:"offeringId" json:"offeringId"` // Partition Key
	OwnerID         string            `dynamodbav:"ownerId" json:"ownerId"`
	Title           string            `dynamodbav:"title" json:"title"`
	DurationMinutes int               `dynamodbav:"durationMinutes" json:"durationMinutes"`
	Price           float64           `dynamodbav:"price" json:"price"`
	CreatedAt       string            `dynamodbav:"createdAt" json:"createdAt"`
	Metadata        map[string]string `dynamodbav:"metadata,omitempty" json:"metadata,omitempty"`
}

// ServiceOfferingsTable is the DynamoDB table for service offerings
const ServiceOfferingsTable = "ServiceOfferings"
