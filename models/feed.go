package models

// JobPosting is one job offered to candidates in the swipe feed. The feed
// GSI orders open postings by (deadline, createdAt); FeedKey is that
// compound key materialized, so a start-after cursor can resume on ties.
type JobPosting struct {
	JobID     string `dynamodbav:"jobId" json:"jobId"` // Partition Key
	CompanyID string `dynamodbav:"companyId" json:"companyId"`
	Title     string `dynamodbav:"title" json:"title"`
	Category  string `dynamodbav:"category" json:"category"`
	Deadline  string `dynamodbav:"deadline" json:"deadline"` // YYYY-MM-DD
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
	Feed      string `dynamodbav:"feed" json:"-"`    // GSI Partition Key, "open" while offered
	FeedKey   string `dynamodbav:"feedKey" json:"-"` // GSI Sort Key: "deadline#createdAt#jobId"
}

// CandidateProfile is one candidate offered to companies in the swipe
// feed, ordered by (category, createdAt).
type CandidateProfile struct {
	CandidateID string `dynamodbav:"candidateId" json:"candidateId"` // Partition Key
	Name        string `dynamodbav:"name" json:"name"`
	Category    string `dynamodbav:"category" json:"category"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
	Feed        string `dynamodbav:"feed" json:"-"`
	FeedKey     string `dynamodbav:"feedKey" json:"-"` // "category#createdAt#candidateId"
}

// CandidateFeedItem is a candidate page entry annotated for the company
// view. LikedYou drives UI emphasis only; it never filters the page.
type CandidateFeedItem struct {
	CandidateProfile
	LikedYou bool `json:"likedYou"`
}

// JobFeedPage is one page of the jobs-for-candidate feed. An empty
// NextPageToken means the feed is exhausted until new postings arrive.
type JobFeedPage struct {
	Items         []JobPosting `json:"items"`
	NextPageToken string       `json:"nextPageToken,omitempty"`
}

// CandidateFeedPage is one page of the candidates-for-company feed.
type CandidateFeedPage struct {
	Items         []CandidateFeedItem `json:"items"`
	NextPageToken string              `json:"nextPageToken,omitempty"`
}

// FeedSortKey builds the compound feed GSI sort key.
func FeedSortKey(primary, secondary, id string) string {
	return primary + "#" + secondary + "#" + id
}

// JobPostingsTable is the DynamoDB table for job postings
const JobPostingsTable = "JobPostings"

// CandidateProfilesTable is the DynamoDB table for candidate profiles
const CandidateProfilesTable = "CandidateProfiles"

// FeedIndex is the GSI name shared by both feed tables (PK feed, SK feedKey)
const FeedIndex = "feed-index"
