package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExtractString safely extracts a string attribute from a DynamoDB item
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// StringAttr wraps a string as a DynamoDB attribute value
func StringAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}
