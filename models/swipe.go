package models

// SwipeDecision is one party's one-sided decision about a counterparty.
// At most one decision exists per ordered (swiper, target) pair; repeat
// submissions return the stored decision unchanged.
type SwipeDecision struct {
	SwiperID   string `dynamodbav:"swiperId" json:"swiperId"` // Partition Key
	TargetID   string `dynamodbav:"targetId" json:"targetId"` // Sort Key
	Direction  string `dynamodbav:"direction" json:"direction"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	ValidUntil string `dynamodbav:"validUntil" json:"validUntil"` // re-offer cooldown boundary, not a matching expiry
}

// Match marks a mutual right swipe for an unordered pair. The conditional
// put on pairKey is the once-only "match created" marker; whichever side's
// write lands first owns the conversation and the notification.
type Match struct {
	PairKey        string `dynamodbav:"pairKey" json:"pairKey"` // Partition Key: sorted ids joined with "#"
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"`
	UserA          string `dynamodbav:"userA" json:"userA"`
	UserB          string `dynamodbav:"userB" json:"userB"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
}

// PairKey builds the order-independent match key for two participants.
func PairKey(a, b string) string {
	if a < b {
		return a + "#" + b
	}
	return b + "#" + a
}

// SwipeDecisionsTable is the DynamoDB table for swipe decisions
const SwipeDecisionsTable = "SwipeDecisions"

// MatchesTable is the DynamoDB table for mutual matches
const MatchesTable = "Matches"
