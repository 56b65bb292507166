package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talentlink_server/models"
	"talentlink_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// SwipeService is the decision ledger. It records one-sided decisions
// idempotently and detects the mirrored decision that turns them into a
// mutual match.
type SwipeService struct {
	Dynamo        *DynamoService
	Notifier      Notifier
	ReofferWindow time.Duration

	now func() time.Time
}

func NewSwipeService(dynamo *DynamoService, notifier Notifier, reofferWindow time.Duration) *SwipeService {
	return &SwipeService{
		Dynamo:        dynamo,
		Notifier:      notifier,
		ReofferWindow: reofferWindow,
		now:           time.Now,
	}
}

// SwipeResult is the definitive outcome returned to the caller; any
// speculative UI state is the client's business.
type SwipeResult struct {
	Decision        models.SwipeDecision `json:"decision"`
	AlreadyRecorded bool                 `json:"alreadyRecorded"`
	Matched         bool                 `json:"matched"`
	ConversationID  string               `json:"conversationId,omitempty"`
}

// RecordDecision stores one decision for the ordered (swiper, target)
// pair. A repeat submission returns the stored decision unchanged; this is
// a success path, tolerating double-submission from a flaky client. Every
// right swipe, fresh or replayed, then resolves the mirrored decision:
// the replay path must re-resolve so a crash between the decision write
// and match resolution can always be recovered by retrying.
func (ss *SwipeService) RecordDecision(ctx context.Context, swiperID, targetID, direction string) (*SwipeResult, error) {
	if direction != models.SwipeDirectionLeft && direction != models.SwipeDirectionRight {
		return nil, fmt.Errorf("invalid swipe direction %q", direction)
	}
	if swiperID == "" || targetID == "" || swiperID == targetID {
		return nil, fmt.Errorf("invalid swipe pair (%q, %q)", swiperID, targetID)
	}

	now := ss.now().UTC()
	decision := models.SwipeDecision{
		SwiperID:   swiperID,
		TargetID:   targetID,
		Direction:  direction,
		CreatedAt:  now.Format(time.RFC3339),
		ValidUntil: now.Add(ss.ReofferWindow).Format(time.RFC3339),
	}

	err := ss.Dynamo.PutItemConditional(ctx, models.SwipeDecisionsTable, decision, "attribute_not_exists(targetId)")
	if errors.Is(err, ErrConditionFailed) {
		existing, getErr := ss.GetDecision(ctx, swiperID, targetID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load existing decision: %w", getErr)
		}
		result := &SwipeResult{Decision: *existing, AlreadyRecorded: true}
		if existing.Direction == models.SwipeDirectionRight {
			if err := ss.resolveMatch(ctx, swiperID, targetID, now, result); err != nil {
				return nil, err
			}
		}
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}

	result := &SwipeResult{Decision: decision}
	if direction == models.SwipeDirectionLeft {
		return result, nil
	}
	if err := ss.resolveMatch(ctx, swiperID, targetID, now, result); err != nil {
		// The decision itself is stored at this point; the caller gets
		// the error, and a replay of the same swipe lands on the
		// AlreadyRecorded path above, which resolves the match again.
		return nil, err
	}
	return result, nil
}

// resolveMatch checks the mirrored decision and, on mutual right, claims
// the once-only match marker and fills in the match fields of result. The
// mirrored writes can race from either side; the conditional put on the
// pair key resolves who owns the match, so re-running this on a replay
// can never duplicate a match or its notification.
func (ss *SwipeService) resolveMatch(ctx context.Context, swiperID, targetID string, now time.Time, result *SwipeResult) error {
	mirror, err := ss.GetDecision(ctx, targetID, swiperID)
	if errors.Is(err, ErrItemNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check mirrored decision: %w", err)
	}
	if mirror.Direction != models.SwipeDirectionRight {
		return nil
	}

	match, created, err := ss.claimMatch(ctx, swiperID, targetID, now)
	if err != nil {
		return err
	}
	if created {
		ss.notifyMatch(*match)
	}
	result.Matched = true
	result.ConversationID = match.ConversationID
	return nil
}

// claimMatch writes the unordered-pair marker at most once. The side
// whose conditional put lands owns conversation creation; the other side
// reads the marker it lost to.
func (ss *SwipeService) claimMatch(ctx context.Context, a, b string, now time.Time) (*models.Match, bool, error) {
	userA, userB := a, b
	if userB < userA {
		userA, userB = userB, userA
	}
	match := models.Match{
		PairKey:        models.PairKey(a, b),
		ConversationID: uuid.NewString(),
		UserA:          userA,
		UserB:          userB,
		CreatedAt:      now.Format(time.RFC3339),
	}

	err := ss.Dynamo.PutItemConditional(ctx, models.MatchesTable, match, "attribute_not_exists(pairKey)")
	if errors.Is(err, ErrConditionFailed) {
		existing, getErr := ss.getMatch(ctx, match.PairKey)
		if getErr != nil {
			return nil, false, fmt.Errorf("failed to load existing match: %w", getErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create match: %w", err)
	}
	return &match, true, nil
}

func (ss *SwipeService) notifyMatch(match models.Match) {
	notifyAsync("match", func(ctx context.Context) error {
		return ss.Notifier.NotifyMatch(ctx, match)
	})
}

// GetDecision fetches the decision for one ordered pair; ErrItemNotFound
// when the pair is unswiped.
func (ss *SwipeService) GetDecision(ctx context.Context, swiperID, targetID string) (*models.SwipeDecision, error) {
	item, err := ss.Dynamo.GetItem(ctx, models.SwipeDecisionsTable, map[string]types.AttributeValue{
		"swiperId": utils.StringAttr(swiperID),
		"targetId": utils.StringAttr(targetID),
	})
	if err != nil {
		return nil, err
	}
	var decision models.SwipeDecision
	if err := attributevalue.UnmarshalMap(item, &decision); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decision: %w", err)
	}
	return &decision, nil
}

// DecisionsBySwiper returns everything one swiper has decided, keyed by
// target. The feed consults this on every page fetch instead of any
// client-side memory, so dedupe survives restarts.
func (ss *SwipeService) DecisionsBySwiper(ctx context.Context, swiperID string) (map[string]models.SwipeDecision, error) {
	items, err := ss.Dynamo.QueryAllPages(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(models.SwipeDecisionsTable),
		KeyConditionExpression: aws.String("swiperId = :swiper"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":swiper": utils.StringAttr(swiperID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions for %s: %w", swiperID, err)
	}
	var decisions []models.SwipeDecision
	if err := attributevalue.UnmarshalListOfMaps(items, &decisions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decisions: %w", err)
	}
	byTarget := make(map[string]models.SwipeDecision, len(decisions))
	for _, d := range decisions {
		byTarget[d.TargetID] = d
	}
	return byTarget, nil
}

func (ss *SwipeService) getMatch(ctx context.Context, pairKey string) (*models.Match, error) {
	item, err := ss.Dynamo.GetItem(ctx, models.MatchesTable, map[string]types.AttributeValue{
		"pairKey": utils.StringAttr(pairKey),
	})
	if err != nil {
		return nil, err
	}
	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	return &match, nil
}
