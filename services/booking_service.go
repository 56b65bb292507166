package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talentlink_server/models"
	"talentlink_server/timegrid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// BookingService turns a previously-offered candidate slot into a booking
// with a single all-or-nothing store transaction. Concurrent attempts on
// overlapping chunks resolve to exactly one winner through the per-chunk
// conditional puts; the loser sees ErrSlotNoLongerAvailable.
type BookingService struct {
	Dynamo   *DynamoService
	Notifier Notifier
}

// BookSlotRequest carries the exact chunk list of the offered candidate.
type BookSlotRequest struct {
	ExpertID  string             `json:"expertId"`
	WindowID  string             `json:"windowId"`
	Date      string             `json:"date"`
	ServiceID string             `json:"serviceId"`
	BookerID  string             `json:"bookerId"`
	Chunks    []models.SlotChunk `json:"chunks"`
}

// Book executes the atomic claim. In one transaction it writes one claim
// item per requested chunk (each conditional on the chunk being
// unclaimed), the booking record, and the window's refreshed bookedChunks
// and fullyBooked under a version condition. Any failed condition aborts
// the whole transaction with no partial writes.
func (bs *BookingService) Book(ctx context.Context, req BookSlotRequest) (*models.Booking, error) {
	if err := validateChunkRun(req.Chunks); err != nil {
		return nil, err
	}

	// Fresh read of the parent window, independent of the read that
	// produced the candidate.
	windowKey := map[string]types.AttributeValue{
		"ownerId": &types.AttributeValueMemberS{Value: req.ExpertID},
		"sk":      &types.AttributeValueMemberS{Value: models.WindowSortKey(req.Date, req.WindowID)},
	}
	item, err := bs.Dynamo.GetItem(ctx, models.AvailabilityWindowsTable, windowKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load window %s: %w", req.WindowID, err)
	}
	var window models.AvailabilityWindow
	if err := attributevalue.UnmarshalMap(item, &window); err != nil {
		return nil, fmt.Errorf("failed to unmarshal window: %w", err)
	}

	// The chunk list comes from the client; only chunks the window can
	// actually cut may enter its ledger.
	windowStart, err := timegrid.Normalize(window.Start)
	if err != nil {
		return nil, fmt.Errorf("window %s start: %w", req.WindowID, err)
	}
	windowEnd, err := timegrid.Normalize(window.End)
	if err != nil {
		return nil, fmt.Errorf("window %s end: %w", req.WindowID, err)
	}
	inWindow := make(map[string]struct{})
	for _, c := range timegrid.Chunk(windowStart, windowEnd) {
		inWindow[c.Start.Format(time.RFC3339)] = struct{}{}
	}
	for _, c := range req.Chunks {
		start := c.Start.UTC()
		if _, ok := inWindow[start.Format(time.RFC3339)]; !ok {
			return nil, fmt.Errorf("chunk %s lies outside window %s", start.Format(time.RFC3339), req.WindowID)
		}
		if start.Format("2006-01-02") != req.Date {
			return nil, fmt.Errorf("chunk %s is not on %s", start.Format(time.RFC3339), req.Date)
		}
	}

	taken := make(map[string]struct{}, len(window.BookedChunks))
	for _, c := range window.BookedChunks {
		taken[c.Start] = struct{}{}
	}
	for _, c := range req.Chunks {
		if _, ok := taken[c.Start.UTC().Format(time.RFC3339)]; ok {
			return nil, fmt.Errorf("chunk %s already booked: %w", c.Start.Format(time.RFC3339), ErrSlotNoLongerAvailable)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	first := req.Chunks[0]
	last := req.Chunks[len(req.Chunks)-1]
	booking := models.Booking{
		BookingID:   uuid.NewString(),
		UserID:      req.BookerID,
		ExpertID:    req.ExpertID,
		ServiceID:   req.ServiceID,
		WindowID:    req.WindowID,
		Date:        req.Date,
		Start:       first.Start.UTC().Format(time.RFC3339),
		End:         last.End.UTC().Format(time.RFC3339),
		Status:      models.BookingStatusPending,
		CreatedAt:   now,
		LastUpdated: now,
	}

	newChunks := append([]models.BookedChunk{}, window.BookedChunks...)
	for _, c := range req.Chunks {
		newChunks = append(newChunks, models.BookedChunk{
			Start:     c.Start.UTC().Format(time.RFC3339),
			End:       c.End.UTC().Format(time.RFC3339),
			BookedBy:  req.BookerID,
			ServiceID: req.ServiceID,
		})
	}
	fullyBooked, err := windowFull(window, len(newChunks))
	if err != nil {
		return nil, err
	}

	var transact []types.TransactWriteItem
	claimKey := models.ClaimKey(req.ExpertID, req.Date)
	for _, c := range req.Chunks {
		claim := models.ChunkClaim{
			ClaimKey:   claimKey,
			ChunkStart: c.Start.UTC().Format(time.RFC3339),
			ChunkEnd:   c.End.UTC().Format(time.RFC3339),
			BookingID:  booking.BookingID,
			WindowID:   req.WindowID,
			BookedBy:   req.BookerID,
			ServiceID:  req.ServiceID,
		}
		claimItem, err := attributevalue.MarshalMap(claim)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal chunk claim: %w", err)
		}
		transact = append(transact, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(models.BookedChunksTable),
				Item:                claimItem,
				ConditionExpression: aws.String("attribute_not_exists(chunkStart)"),
			},
		})
	}

	bookingItem, err := attributevalue.MarshalMap(booking)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking: %w", err)
	}
	transact = append(transact, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(models.BookingsTable),
			Item:                bookingItem,
			ConditionExpression: aws.String("attribute_not_exists(bookingId)"),
		},
	})

	windowUpdate, err := windowLedgerUpdate(windowKey, window.Version, newChunks, fullyBooked)
	if err != nil {
		return nil, err
	}
	transact = append(transact, *windowUpdate)

	if err := bs.Dynamo.TransactWrite(ctx, transact); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, fmt.Errorf("booking %s lost the race: %w", booking.BookingID, ErrSlotNoLongerAvailable)
		}
		return nil, fmt.Errorf("booking transaction failed: %w", err)
	}

	notifyAsync("booking request", func(ctx context.Context) error {
		return bs.Notifier.NotifyBookingRequest(ctx, booking)
	})
	return &booking, nil
}

// Get fetches one booking by id.
func (bs *BookingService) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	item, err := bs.Dynamo.GetItem(ctx, models.BookingsTable, map[string]types.AttributeValue{
		"bookingId": &types.AttributeValueMemberS{Value: bookingID},
	})
	if err != nil {
		return nil, err
	}
	var booking models.Booking
	if err := attributevalue.UnmarshalMap(item, &booking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking: %w", err)
	}
	return &booking, nil
}

// Accept transitions a pending booking to accepted. Only the owning
// expert can accept, and only while the booking is still pending.
func (bs *BookingService) Accept(ctx context.Context, bookingID, expertID string) (*models.Booking, error) {
	attrs, err := bs.Dynamo.UpdateItemConditional(ctx, models.BookingsTable,
		map[string]types.AttributeValue{
			"bookingId": &types.AttributeValueMemberS{Value: bookingID},
		},
		"SET #st = :accepted, lastUpdated = :now",
		"#st = :pending AND expertId = :expert",
		map[string]types.AttributeValue{
			":accepted": &types.AttributeValueMemberS{Value: models.BookingStatusAccepted},
			":pending":  &types.AttributeValueMemberS{Value: models.BookingStatusPending},
			":expert":   &types.AttributeValueMemberS{Value: expertID},
			":now":      &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		map[string]string{"#st": "status"},
	)
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, fmt.Errorf("booking %s is not pending for expert %s: %w", bookingID, expertID, err)
		}
		return nil, err
	}
	var booking models.Booking
	if err := attributevalue.UnmarshalMap(attrs, &booking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking: %w", err)
	}
	return &booking, nil
}

// Reject transitions a pending booking to rejected and releases its
// chunks back to the window in the same transaction. Release is an
// explicit compensating step, never an implicit side effect.
func (bs *BookingService) Reject(ctx context.Context, bookingID, expertID string) (*models.Booking, error) {
	booking, err := bs.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ExpertID != expertID {
		return nil, fmt.Errorf("booking %s does not belong to expert %s", bookingID, expertID)
	}

	bookingStart, err := timegrid.Normalize(booking.Start)
	if err != nil {
		return nil, fmt.Errorf("booking %s start: %w", bookingID, err)
	}
	bookingEnd, err := timegrid.Normalize(booking.End)
	if err != nil {
		return nil, fmt.Errorf("booking %s end: %w", bookingID, err)
	}
	released := make(map[string]struct{})
	for _, c := range timegrid.Chunk(bookingStart, bookingEnd) {
		released[c.Start.Format(time.RFC3339)] = struct{}{}
	}

	windowKey := map[string]types.AttributeValue{
		"ownerId": &types.AttributeValueMemberS{Value: booking.ExpertID},
		"sk":      &types.AttributeValueMemberS{Value: models.WindowSortKey(booking.Date, booking.WindowID)},
	}
	item, err := bs.Dynamo.GetItem(ctx, models.AvailabilityWindowsTable, windowKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load window %s: %w", booking.WindowID, err)
	}
	var window models.AvailabilityWindow
	if err := attributevalue.UnmarshalMap(item, &window); err != nil {
		return nil, fmt.Errorf("failed to unmarshal window: %w", err)
	}

	remaining := make([]models.BookedChunk, 0, len(window.BookedChunks))
	for _, c := range window.BookedChunks {
		if _, gone := released[c.Start]; gone && c.BookedBy == booking.UserID {
			continue
		}
		remaining = append(remaining, c)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var transact []types.TransactWriteItem
	transact = append(transact, types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(models.BookingsTable),
			Key: map[string]types.AttributeValue{
				"bookingId": &types.AttributeValueMemberS{Value: bookingID},
			},
			UpdateExpression:    aws.String("SET #st = :rejected, lastUpdated = :now"),
			ConditionExpression: aws.String("#st = :pending"),
			ExpressionAttributeNames: map[string]string{
				"#st": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":rejected": &types.AttributeValueMemberS{Value: models.BookingStatusRejected},
				":pending":  &types.AttributeValueMemberS{Value: models.BookingStatusPending},
				":now":      &types.AttributeValueMemberS{Value: now},
			},
		},
	})
	claimKey := models.ClaimKey(booking.ExpertID, booking.Date)
	for start := range released {
		transact = append(transact, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(models.BookedChunksTable),
				Key: map[string]types.AttributeValue{
					"claimKey":   &types.AttributeValueMemberS{Value: claimKey},
					"chunkStart": &types.AttributeValueMemberS{Value: start},
				},
			},
		})
	}
	windowUpdate, err := windowLedgerUpdate(windowKey, window.Version, remaining, false)
	if err != nil {
		return nil, err
	}
	transact = append(transact, *windowUpdate)

	if err := bs.Dynamo.TransactWrite(ctx, transact); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, fmt.Errorf("booking %s is no longer pending: %w", bookingID, err)
		}
		return nil, fmt.Errorf("rejection transaction failed: %w", err)
	}

	booking.Status = models.BookingStatusRejected
	booking.LastUpdated = now
	return booking, nil
}

// windowLedgerUpdate rewrites a window's derived booking state under its
// version condition, so the denormalized values can never drift from the
// transaction that produced them.
func windowLedgerUpdate(windowKey map[string]types.AttributeValue, version int64, chunks []models.BookedChunk, fullyBooked bool) (*types.TransactWriteItem, error) {
	chunkList, err := attributevalue.Marshal(chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booked chunks: %w", err)
	}
	return &types.TransactWriteItem{
		Update: &types.Update{
			TableName:           aws.String(models.AvailabilityWindowsTable),
			Key:                 windowKey,
			UpdateExpression:    aws.String("SET bookedChunks = :chunks, fullyBooked = :full, version = :next"),
			ConditionExpression: aws.String("version = :current"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":chunks":  chunkList,
				":full":    &types.AttributeValueMemberBOOL{Value: fullyBooked},
				":next":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", version+1)},
				":current": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", version)},
			},
		},
	}, nil
}

// windowFull recomputes the fullyBooked flag from the window's capacity.
func windowFull(window models.AvailabilityWindow, bookedCount int) (bool, error) {
	start, err := timegrid.Normalize(window.Start)
	if err != nil {
		return false, fmt.Errorf("window %s start: %w", window.WindowID, err)
	}
	end, err := timegrid.Normalize(window.End)
	if err != nil {
		return false, fmt.Errorf("window %s end: %w", window.WindowID, err)
	}
	capacity := timegrid.ChunkCount(start, end)
	return capacity > 0 && bookedCount >= capacity, nil
}

// validateChunkRun requires a non-empty, chunk-aligned, strictly adjacent
// run, exactly as SlotComposer emits them.
func validateChunkRun(chunks []models.SlotChunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks requested")
	}
	for i, c := range chunks {
		if !c.End.Equal(c.Start.Add(timegrid.BaseChunk)) {
			return fmt.Errorf("chunk %d is not base-chunk sized", i)
		}
		if i > 0 && !c.Start.Equal(chunks[i-1].End) {
			return fmt.Errorf("chunks %d and %d are not adjacent", i-1, i)
		}
	}
	return nil
}
