package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"talentlink_server/models"
	"talentlink_server/timegrid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// SlotService enumerates bookable candidate slots. The result is a
// read-time hint only; the booking transaction re-checks everything.
type SlotService struct {
	Dynamo *DynamoService
}

// CandidatesForDate returns every candidate slot able to host the given
// offering on one expert's day, earliest first. An empty result means no
// availability, not an error.
func (ss *SlotService) CandidatesForDate(ctx context.Context, expertID, date, offeringID string) ([]models.CandidateSlot, error) {
	offering, err := ss.getOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	if !timegrid.Aligned(time.Duration(offering.DurationMinutes) * time.Minute) {
		return nil, fmt.Errorf("offering %s: %w", offeringID, ErrInvalidDuration)
	}

	windows, err := ss.windowsForDate(ctx, expertID, date)
	if err != nil {
		return nil, err
	}

	booked := make(map[time.Time]struct{})
	// Chunks recorded in the windows' own ledgers.
	for _, w := range windows {
		for _, c := range w.BookedChunks {
			start, err := timegrid.Normalize(c.Start)
			if err != nil {
				log.Printf("skipping malformed booked chunk in window %s: %v", w.WindowID, err)
				continue
			}
			booked[start] = struct{}{}
		}
	}
	// Chunks recorded in the claim ledger; a write can legally land in
	// either, so both are consulted.
	claims, err := ss.claimsForDate(ctx, expertID, date)
	if err != nil {
		return nil, err
	}
	for _, c := range claims {
		start, err := timegrid.Normalize(c.ChunkStart)
		if err != nil {
			log.Printf("skipping malformed chunk claim %s/%s: %v", c.ClaimKey, c.ChunkStart, err)
			continue
		}
		booked[start] = struct{}{}
	}

	return ComposeCandidates(windows, booked, offering.DurationMinutes), nil
}

// ComposeCandidates slides a run of the required chunk count over the free
// chunks of each window. Chunks from different windows never combine; a
// chunk-start duplicated across overlapping windows is offered at most
// once per read. Malformed windows are skipped without failing siblings.
func ComposeCandidates(windows []models.AvailabilityWindow, booked map[time.Time]struct{}, durationMinutes int) []models.CandidateSlot {
	need := timegrid.ChunksFor(durationMinutes)
	if need == 0 {
		return nil
	}

	var free []models.SlotChunk
	seenStarts := make(map[time.Time]struct{})
	for _, w := range windows {
		start, err := timegrid.Normalize(w.Start)
		if err != nil {
			log.Printf("skipping window %s with malformed start: %v", w.WindowID, err)
			continue
		}
		end, err := timegrid.Normalize(w.End)
		if err != nil {
			log.Printf("skipping window %s with malformed end: %v", w.WindowID, err)
			continue
		}
		for _, c := range timegrid.Chunk(start, end) {
			if _, taken := booked[c.Start]; taken {
				continue
			}
			if _, dup := seenStarts[c.Start]; dup {
				continue
			}
			seenStarts[c.Start] = struct{}{}
			free = append(free, models.SlotChunk{Start: c.Start, End: c.End, WindowID: w.WindowID})
		}
	}

	sort.Slice(free, func(i, j int) bool { return free[i].Start.Before(free[j].Start) })

	var candidates []models.CandidateSlot
	for i := 0; i+need <= len(free); i++ {
		run := free[i : i+need]
		if !contiguousRun(run) {
			continue
		}
		chunks := make([]models.SlotChunk, need)
		copy(chunks, run)
		candidates = append(candidates, models.CandidateSlot{
			WindowID: run[0].WindowID,
			Date:     run[0].Start.Format("2006-01-02"),
			Start:    run[0].Start,
			End:      run[need-1].End,
			Chunks:   chunks,
		})
	}
	return candidates
}

// contiguousRun requires strict adjacency within a single window.
func contiguousRun(run []models.SlotChunk) bool {
	for i := 1; i < len(run); i++ {
		if run[i].WindowID != run[0].WindowID {
			return false
		}
		if !run[i].Start.Equal(run[i-1].End) {
			return false
		}
	}
	return true
}

func (ss *SlotService) getOffering(ctx context.Context, offeringID string) (*models.ServiceOffering, error) {
	item, err := ss.Dynamo.GetItem(ctx, models.ServiceOfferingsTable, map[string]types.AttributeValue{
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

func (ss *SlotService) windowsForDate(ctx context.Context, expertID, date string) ([]models.AvailabilityWindow, error) {
	items, err := ss.Dynamo.QueryAllPages(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(models.AvailabilityWindowsTable),
		KeyConditionExpression: aws.String("ownerId = :owner AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner":  &types.AttributeValueMemberS{Value: expertID},
			":prefix": &types.AttributeValueMemberS{Value: date + "#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query windows: %w", err)
	}
	var windows []models.AvailabilityWindow
	if err := attributevalue.UnmarshalListOfMaps(items, &windows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal windows: %w", err)
	}
	return windows, nil
}

func (ss *SlotService) claimsForDate(ctx context.Context, expertID, date string) ([]models.ChunkClaim, error) {
	items, err := ss.Dynamo.QueryAllPages(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(models.BookedChunksTable),
		KeyConditionExpression: aws.String("claimKey = :key"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key": &types.AttributeValueMemberS{Value: models.ClaimKey(expertID, date)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk claims: %w", err)
	}
	var claims []models.ChunkClaim
	if err := attributevalue.UnmarshalListOfMaps(items, &claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chunk claims: %w", err)
	}
	return claims, nil
}
