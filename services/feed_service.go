package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
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

// FeedService supplies pages of undecided counterparties to a swiper and
// resumes correctly across restarts. The cursor is the compound feed sort
// key of the last item returned; a scalar cursor would lose its place on
// ties in the primary ordering.
type FeedService struct {
	Dynamo   *DynamoService
	Swipes   *SwipeService
	PageSize int32

	now func() time.Time
}

func NewFeedService(dynamo *DynamoService, swipes *SwipeService, pageSize int) *FeedService {
	return &FeedService{
		Dynamo:   dynamo,
		Swipes:   swipes,
		PageSize: int32(pageSize),
		now:      time.Now,
	}
}

// feedCursor is the opaque page token: the (compound sort key, item id)
// pair of the last item of the previous page.
type feedCursor struct {
	FeedKey string `json:"feedKey"`
	ItemID  string `json:"itemId"`
}

func encodeFeedCursor(feedKey, itemID string) string {
	b, _ := json.Marshal(feedCursor{FeedKey: feedKey, ItemID: itemID})
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeFeedCursor(token, idAttribute string) (map[string]types.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid page token: %w", err)
	}
	var cursor feedCursor
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return nil, fmt.Errorf("invalid page token: %w", err)
	}
	if cursor.FeedKey == "" || cursor.ItemID == "" {
		return nil, fmt.Errorf("invalid page token: missing cursor fields")
	}
	return map[string]types.AttributeValue{
		"feed":      &types.AttributeValueMemberS{Value: models.FeedPartitionOpen},
		"feedKey":   &types.AttributeValueMemberS{Value: cursor.FeedKey},
		idAttribute: &types.AttributeValueMemberS{Value: cursor.ItemID},
	}, nil
}

// JobsForCandidate returns the next page of open jobs the candidate has
// not decided, ordered by (deadline, createdAt). An empty NextPageToken
// means the feed is exhausted until new postings arrive. A read failure
// surfaces as ErrCandidateFetchFailed and never advances the cursor.
func (fs *FeedService) JobsForCandidate(ctx context.Context, candidateID, pageToken string) (*models.JobFeedPage, error) {
	decisions, err := fs.Swipes.DecisionsBySwiper(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCandidateFetchFailed, err)
	}
	excluded := fs.excludedTargets(decisions)

	var startKey map[string]types.AttributeValue
	if pageToken != "" {
		if startKey, err = decodeFeedCursor(pageToken, "jobId"); err != nil {
			return nil, err
		}
	}

	page := &models.JobFeedPage{Items: []models.JobPosting{}}
	for int32(len(page.Items)) < fs.PageSize {
		raw, lastKey, err := fs.Dynamo.QueryPage(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(models.JobPostingsTable),
			IndexName:              aws.String(models.FeedIndex),
			KeyConditionExpression: aws.String("feed = :feed"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":feed": &types.AttributeValueMemberS{Value: models.FeedPartitionOpen},
			},
			Limit:             aws.Int32(fs.PageSize),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCandidateFetchFailed, err)
		}

		var jobs []models.JobPosting
		if err := attributevalue.UnmarshalListOfMaps(raw, &jobs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCandidateFetchFailed, err)
		}
		for _, job := range jobs {
			if _, skip := excluded[job.CompanyID]; skip {
				continue
			}
			page.Items = append(page.Items, job)
			if int32(len(page.Items)) == fs.PageSize {
				break
			}
		}
		if lastKey == nil {
			// Source exhausted; a short page tells the caller to stop.
			if int32(len(page.Items)) == fs.PageSize {
				last := page.Items[len(page.Items)-1]
				page.NextPageToken = encodeFeedCursor(last.FeedKey, last.JobID)
			}
			return page, nil
		}
		startKey = lastKey
	}

	last := page.Items[len(page.Items)-1]
	page.NextPageToken = encodeFeedCursor(last.FeedKey, last.JobID)
	return page, nil
}

// CandidatesForCompany returns the next page of candidates the company
// has not decided, ordered by (category, createdAt). Each entry is
// annotated with whether the candidate has right-swiped this company
// within the re-offer window; the flag drives UI emphasis only and never
// filters the page.
func (fs *FeedService) CandidatesForCompany(ctx context.Context, companyID, pageToken string) (*models.CandidateFeedPage, error) {
	decisions, err := fs.Swipes.DecisionsBySwiper(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCandidateFetchFailed, err)
	}
	excluded := fs.excludedTargets(decisions)

	var startKey map[string]types.AttributeValue
	if pageToken != "" {
		if startKey, err = decodeFeedCursor(pageToken, "candidateId"); err != nil {
			return nil, err
		}
	}

	page := &models.CandidateFeedPage{Items: []models.CandidateFeedItem{}}
	for int32(len(page.Items)) < fs.PageSize {
		raw, lastKey, err := fs.Dynamo.QueryPage(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(models.CandidateProfilesTable),
			IndexName:              aws.String(models.FeedIndex),
			KeyConditionExpression: aws.String("feed = :feed"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":feed": &types.AttributeValueMemberS{Value: models.FeedPartitionOpen},
			},
			Limit:             aws.Int32(fs.PageSize),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCandidateFetchFailed, err)
		}

		var candidates []models.CandidateProfile
		if err := attributevalue.UnmarshalListOfMaps(raw, &candidates); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCandidateFetchFailed, err)
		}
		for _, candidate := range candidates {
			if _, skip := excluded[candidate.CandidateID]; skip {
				continue
			}
			likedYou, err := fs.likedViewer(ctx, candidate.CandidateID, companyID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCandidateFetchFailed, err)
			}
			page.Items = append(page.Items, models.CandidateFeedItem{
				CandidateProfile: candidate,
				LikedYou:         likedYou,
			})
			if int32(len(page.Items)) == fs.PageSize {
				break
			}
		}
		if lastKey == nil {
			if int32(len(page.Items)) == fs.PageSize {
				last := page.Items[len(page.Items)-1]
				page.NextPageToken = encodeFeedCursor(last.FeedKey, last.CandidateID)
			}
			return page, nil
		}
		startKey = lastKey
	}

	last := page.Items[len(page.Items)-1]
	page.NextPageToken = encodeFeedCursor(last.FeedKey, last.CandidateID)
	return page, nil
}

// CreateJobPosting stores a posting and places it in the open feed.
func (fs *FeedService) CreateJobPosting(ctx context.Context, job models.JobPosting) (*models.JobPosting, error) {
	if job.CompanyID == "" || job.Deadline == "" {
		return nil, fmt.Errorf("job posting requires companyId and deadline")
	}
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	job.CreatedAt = fs.now().UTC().Format(time.RFC3339)
	job.Feed = models.FeedPartitionOpen
	job.FeedKey = models.FeedSortKey(job.Deadline, job.CreatedAt, job.JobID)
	if err := fs.Dynamo.PutItem(ctx, models.JobPostingsTable, job); err != nil {
		return nil, fmt.Errorf("failed to store job posting: %w", err)
	}
	return &job, nil
}

// CreateCandidateProfile stores a profile and places it in the open feed.
func (fs *FeedService) CreateCandidateProfile(ctx context.Context, candidate models.CandidateProfile) (*models.CandidateProfile, error) {
	if candidate.Category == "" {
		return nil, fmt.Errorf("candidate profile requires a category")
	}
	if candidate.CandidateID == "" {
		candidate.CandidateID = uuid.NewString()
	}
	candidate.CreatedAt = fs.now().UTC().Format(time.RFC3339)
	candidate.Feed = models.FeedPartitionOpen
	candidate.FeedKey = models.FeedSortKey(candidate.Category, candidate.CreatedAt, candidate.CandidateID)
	if err := fs.Dynamo.PutItem(ctx, models.CandidateProfilesTable, candidate); err != nil {
		return nil, fmt.Errorf("failed to store candidate profile: %w", err)
	}
	return &candidate, nil
}

// excludedTargets builds the dedupe set from the swiper's ledger. Rights
// stay excluded (they are pending likes); lefts re-enter the feed once
// their re-offer cooldown has lapsed.
func (fs *FeedService) excludedTargets(decisions map[string]models.SwipeDecision) map[string]struct{} {
	now := fs.now().UTC()
	excluded := make(map[string]struct{}, len(decisions))
	for target, decision := range decisions {
		if decision.Direction == models.SwipeDirectionLeft {
			validUntil, err := timegrid.Normalize(decision.ValidUntil)
			if err == nil && now.After(validUntil) {
				continue
			}
		}
		excluded[target] = struct{}{}
	}
	return excluded
}

// likedViewer reports whether the counterparty right-swiped the viewer
// within the re-offer window.
func (fs *FeedService) likedViewer(ctx context.Context, counterpartyID, viewerID string) (bool, error) {
	decision, err := fs.Swipes.GetDecision(ctx, counterpartyID, viewerID)
	if errors.Is(err, ErrItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if decision.Direction != models.SwipeDirectionRight {
		return false, nil
	}
	validUntil, err := timegrid.Normalize(decision.ValidUntil)
	if err != nil {
		return false, nil
	}
	return fs.now().UTC().Before(validUntil), nil
}
