package services

import (
	"context"
	"fmt"
	"time"

	"talentlink_server/models"
	"talentlink_server/timegrid"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// OfferingService manages the services experts sell. Duration alignment
// is enforced here, at creation, so the allocator can assume every
// referenced offering maps to a whole number of base chunks.
type OfferingService struct {
	Dynamo *DynamoService
}

// Create validates and stores a new offering.
func (os *OfferingService) Create(ctx context.Context, offering models.ServiceOffering) (*models.ServiceOffering, error) {
	if !timegrid.Aligned(time.Duration(offering.DurationMinutes) * time.Minute) {
		return nil, fmt.Errorf("durationMinutes %d: %w", offering.DurationMinutes, ErrInvalidDuration)
	}
	if offering.OwnerID == "" {
		return nil, fmt.Errorf("offering ownerId is required")
	}

	offering.OfferingID = uuid.NewString()
	offering.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := os.Dynamo.PutItem(ctx, models.ServiceOfferingsTable, offering); err != nil {
		return nil, fmt.Errorf("failed to store offering: %w", err)
	}
	return &offering, nil
}

// Get fetches one offering by id.
func (os *OfferingService) Get(ctx context.Context, offeringID string) (*models.ServiceOffering, error) {
	item, err := os.Dynamo.GetItem(ctx, models.ServiceOfferingsTable, map[string]types.AttributeValue{
		"offeringId": &types.AttributeValueMemberS{Value: offeringID},
	})
	if err != nil {
		return nil, err
	}
	var offering models.ServiceOffering
	if err := attributevalue.UnmarshalMap(item, &offering); err != nil {
		return nil, fmt.Errorf("failed to unmarshal offering: %w", err)
	}
	return &offering, nil
}
