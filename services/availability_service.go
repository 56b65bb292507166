package services

import (
	"context"
	"fmt"
	"time"

	"talentlink_server/models"
	"talentlink_server/timegrid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// AvailabilityService manages expert availability windows. Windows are
// created here; their bookedChunks are mutated only by booking
// transactions.
type AvailabilityService struct {
	Dynamo *DynamoService
}

// CreateWindow validates and stores a new availability window. Start and
// end accept any representation TimeGrid can normalize.
func (as *AvailabilityService) CreateWindow(ctx context.Context, ownerID string, start, end interface{}) (*models.AvailabilityWindow, error) {
	startAt, err := timegrid.Normalize(start)
	if err != nil {
		return nil, fmt.Errorf("window start: %w", err)
	}
	endAt, err := timegrid.Normalize(end)
	if err != nil {
		return nil, fmt.Errorf("window end: %w", err)
	}
	if !endAt.After(startAt) {
		return nil, fmt.Errorf("window end must be after start: %w", timegrid.ErrMalformedTimeInput)
	}
	if timegrid.ChunkCount(startAt, endAt) == 0 {
		return nil, fmt.Errorf("window shorter than %s cannot host any service", timegrid.BaseChunk)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	window := models.AvailabilityWindow{
		OwnerID:      ownerID,
		WindowID:     uuid.NewString(),
		Date:         startAt.Format("2006-01-02"),
		Start:        startAt.Format(time.RFC3339),
		End:          endAt.Format(time.RFC3339),
		BookedChunks: []models.BookedChunk{},
		Version:      0,
		CreatedAt:    now,
	}
	window.SK = models.WindowSortKey(window.Date, window.WindowID)

	if err := as.Dynamo.PutItem(ctx, models.AvailabilityWindowsTable, window); err != nil {
		return nil, fmt.Errorf("failed to store window: %w", err)
	}
	return &window, nil
}

// WindowsForDate returns all of one expert's windows on a calendar day.
func (as *AvailabilityService) WindowsForDate(ctx context.Context, ownerID, date string) ([]models.AvailabilityWindow, error) {
	items, err := as.Dynamo.QueryAllPages(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(models.AvailabilityWindowsTable),
		KeyConditionExpression: aws.String("ownerId = :owner AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner":  &types.AttributeValueMemberS{Value: ownerID},
			":prefix": &types.AttributeValueMemberS{Value: date + "#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query windows for %s on %s: %w", ownerID, date, err)
	}

	var windows []models.AvailabilityWindow
	if err := attributevalue.UnmarshalListOfMaps(items, &windows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal windows: %w", err)
	}
	return windows, nil
}
