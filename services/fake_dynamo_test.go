package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"talentlink_server/models"
	"talentlink_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory stand-in for the DynamoDB client. It honors
// the access patterns the services actually issue: point ops, key
// condition queries, the feed GSI with start-after paging, conditional
// puts/updates, and all-or-nothing transactions.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]*fakeTable

	// failQueries makes the next N Query calls fail, for transient-error
	// scenarios.
	failQueries int
}

type fakeTable struct {
	pk    string
	sk    string // empty for simple-key tables
	items map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	f := &fakeDynamo{tables: map[string]*fakeTable{}}
	schemas := map[string][2]string{
		models.AvailabilityWindowsTable: {"ownerId", "sk"},
		models.BookedChunksTable:        {"claimKey", "chunkStart"},
		models.BookingsTable:            {"bookingId", ""},
		models.ServiceOfferingsTable:    {"offeringId", ""},
		models.SwipeDecisionsTable:      {"swiperId", "targetId"},
		models.MatchesTable:             {"pairKey", ""},
		models.JobPostingsTable:         {"jobId", ""},
		models.CandidateProfilesTable:   {"candidateId", ""},
	}
	for name, keys := range schemas {
		f.tables[name] = &fakeTable{pk: keys[0], sk: keys[1], items: map[string]map[string]types.AttributeValue{}}
	}
	return f
}

func (t *fakeTable) keyOf(item map[string]types.AttributeValue) string {
	return utils.ExtractString(item, t.pk) + "\x00" + utils.ExtractString(item, t.sk)
}

func (f *fakeDynamo) table(name *string) (*fakeTable, error) {
	t, ok := f.tables[aws.ToString(name)]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", aws.ToString(name))
	}
	return t, nil
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func resolveName(name string, names map[string]string) string {
	if strings.HasPrefix(name, "#") {
		if resolved, ok := names[name]; ok {
			return resolved
		}
	}
	return name
}

func avEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	}
	return false
}

// evalCondition supports the condition shapes the services generate:
// attribute_not_exists(attr) and attr = :value clauses joined with AND.
func evalCondition(item map[string]types.AttributeValue, cond string, names map[string]string, values map[string]types.AttributeValue) bool {
	for _, clause := range strings.Split(cond, " AND ") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.HasPrefix(clause, "attribute_not_exists("):
			attr := resolveName(strings.TrimSuffix(strings.TrimPrefix(clause, "attribute_not_exists("), ")"), names)
			if item != nil {
				if _, exists := item[attr]; exists {
					return false
				}
			}
		case strings.Contains(clause, " = "):
			parts := strings.SplitN(clause, " = ", 2)
			attr := resolveName(strings.TrimSpace(parts[0]), names)
			placeholder := strings.TrimSpace(parts[1])
			if item == nil {
				return false
			}
			current, ok := item[attr]
			if !ok || !avEqual(current, values[placeholder]) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// applySet supports "SET a = :x, b = :y" update expressions.
func applySet(item map[string]types.AttributeValue, update string, names map[string]string, values map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := copyItem(item)
	if out == nil {
		out = map[string]types.AttributeValue{}
	}
	body := strings.TrimPrefix(update, "SET ")
	for _, assignment := range strings.Split(body, ",") {
		parts := strings.SplitN(assignment, "=", 2)
		attr := resolveName(strings.TrimSpace(parts[0]), names)
		placeholder := strings.TrimSpace(parts[1])
		out[attr] = values[placeholder]
	}
	return out
}

func (f *fakeDynamo) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	item := t.items[t.keyOf(params.Key)]
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	key := t.keyOf(params.Item)
	if params.ConditionExpression != nil {
		if !evalCondition(t.items[key], aws.ToString(params.ConditionExpression), nil, params.ExpressionAttributeValues) {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}
	t.items[key] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	delete(t.items, t.keyOf(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	key := t.keyOf(params.Key)
	item := t.items[key]
	if params.ConditionExpression != nil {
		if !evalCondition(item, aws.ToString(params.ConditionExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}
	updated := applySet(item, aws.ToString(params.UpdateExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	for k, v := range params.Key {
		updated[k] = v
	}
	t.items[key] = updated
	return &dynamodb.UpdateItemOutput{Attributes: copyItem(updated)}, nil
}

func (f *fakeDynamo) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failQueries > 0 {
		f.failQueries--
		return nil, errors.New("injected transient store failure")
	}
	t, err := f.table(params.TableName)
	if err != nil {
		return nil, err
	}
	if params.IndexName != nil {
		return f.queryFeedIndex(t, params)
	}

	expr := aws.ToString(params.KeyConditionExpression)
	clauses := strings.Split(expr, " AND ")
	eq := strings.SplitN(clauses[0], " = ", 2)
	pkAttr := strings.TrimSpace(eq[0])
	pkVal := utils.ExtractString(params.ExpressionAttributeValues, strings.TrimSpace(eq[1]))

	prefix := ""
	skAttr := ""
	if len(clauses) == 2 {
		inner := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(clauses[1]), "begins_with("), ")")
		parts := strings.SplitN(inner, ",", 2)
		skAttr = strings.TrimSpace(parts[0])
		prefix = utils.ExtractString(params.ExpressionAttributeValues, strings.TrimSpace(parts[1]))
	}

	var matches []map[string]types.AttributeValue
	for _, item := range t.items {
		if utils.ExtractString(item, pkAttr) != pkVal {
			continue
		}
		if skAttr != "" && !strings.HasPrefix(utils.ExtractString(item, skAttr), prefix) {
			continue
		}
		matches = append(matches, copyItem(item))
	}
	sort.Slice(matches, func(i, j int) bool {
		return utils.ExtractString(matches[i], t.sk) < utils.ExtractString(matches[j], t.sk)
	})
	return &dynamodb.QueryOutput{Items: matches}, nil
}

// queryFeedIndex models the feed GSI: constant partition, feedKey sort,
// start-after cursor, page limit, LastEvaluatedKey while more remain.
func (f *fakeDynamo) queryFeedIndex(t *fakeTable, params *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
	feedVal := utils.ExtractString(params.ExpressionAttributeValues, ":feed")

	var matches []map[string]types.AttributeValue
	for _, item := range t.items {
		if utils.ExtractString(item, "feed") == feedVal {
			matches = append(matches, copyItem(item))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if a, b := utils.ExtractString(matches[i], "feedKey"), utils.ExtractString(matches[j], "feedKey"); a != b {
			return a < b
		}
		return utils.ExtractString(matches[i], t.pk) < utils.ExtractString(matches[j], t.pk)
	})

	if params.ExclusiveStartKey != nil {
		afterKey := utils.ExtractString(params.ExclusiveStartKey, "feedKey")
		afterID := utils.ExtractString(params.ExclusiveStartKey, t.pk)
		cut := 0
		for cut < len(matches) {
			k, id := utils.ExtractString(matches[cut], "feedKey"), utils.ExtractString(matches[cut], t.pk)
			if k > afterKey || (k == afterKey && id > afterID) {
				break
			}
			cut++
		}
		matches = matches[cut:]
	}

	limit := len(matches)
	if params.Limit != nil && int(*params.Limit) < limit {
		limit = int(*params.Limit)
	}
	page := matches[:limit]

	out := &dynamodb.QueryOutput{Items: page}
	if limit < len(matches) && limit > 0 {
		last := page[limit-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"feed":    last["feed"],
			"feedKey": last["feedKey"],
			t.pk:      last[t.pk],
		}
	}
	return out, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, params *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Check every condition before applying anything; a transaction is
	// all-or-nothing.
	reasons := make([]types.CancellationReason, len(params.TransactItems))
	failed := false
	for i, item := range params.TransactItems {
		ok := true
		switch {
		case item.Put != nil:
			t, err := f.table(item.Put.TableName)
			if err != nil {
				return nil, err
			}
			if item.Put.ConditionExpression != nil {
				ok = evalCondition(t.items[t.keyOf(item.Put.Item)], aws.ToString(item.Put.ConditionExpression), item.Put.ExpressionAttributeNames, item.Put.ExpressionAttributeValues)
			}
		case item.Update != nil:
			t, err := f.table(item.Update.TableName)
			if err != nil {
				return nil, err
			}
			if item.Update.ConditionExpression != nil {
				ok = evalCondition(t.items[t.keyOf(item.Update.Key)], aws.ToString(item.Update.ConditionExpression), item.Update.ExpressionAttributeNames, item.Update.ExpressionAttributeValues)
			}
		case item.Delete != nil:
			if _, err := f.table(item.Delete.TableName); err != nil {
				return nil, err
			}
		}
		if ok {
			reasons[i] = types.CancellationReason{Code: aws.String("None")}
		} else {
			reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, item := range params.TransactItems {
		switch {
		case item.Put != nil:
			t, _ := f.table(item.Put.TableName)
			t.items[t.keyOf(item.Put.Item)] = copyItem(item.Put.Item)
		case item.Update != nil:
			t, _ := f.table(item.Update.TableName)
			key := t.keyOf(item.Update.Key)
			updated := applySet(t.items[key], aws.ToString(item.Update.UpdateExpression), item.Update.ExpressionAttributeNames, item.Update.ExpressionAttributeValues)
			for k, v := range item.Update.Key {
				updated[k] = v
			}
			t.items[key] = updated
		case item.Delete != nil:
			t, _ := f.table(item.Delete.TableName)
			delete(t.items, t.keyOf(item.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

// itemCount reports how many items a table holds.
func (f *fakeDynamo) itemCount(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table].items)
}

// rawItems snapshots a table's items.
func (f *fakeDynamo) rawItems(table string) []map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]types.AttributeValue
	for _, item := range f.tables[table].items {
		out = append(out, copyItem(item))
	}
	return out
}
