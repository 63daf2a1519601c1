package batch

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// Row represents a table row as a mapping from field name to value.
type Row map[string]types.AttributeValue

// PK represents a primary key: a Row restricted to the table's key fields.
type PK map[string]types.AttributeValue

// Version is an opaque concurrency token identifying a stored revision of a
// row. Versions are issued on every successful put; only equality is defined.
type Version string

// IsZero reports whether the version is the absent token.
func (v Version) IsZero() bool { return v == "" }

// Equal reports whether two versions identify the same stored revision.
func (v Version) Equal(other Version) bool { return v == other }

// newVersion issues a fresh opaque version token.
func newVersion() Version {
	return Version(uuid.NewString())
}

// MarshalRow converts a Go value (struct or map) into a Row using
// dynamodbav struct tags.
func MarshalRow(v any) (Row, error) {
	m, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("writeset: marshal row: %w", err)
	}
	return Row(m), nil
}

// UnmarshalRow converts a Row back into a Go value using dynamodbav struct tags.
func UnmarshalRow(row Row, out any) error {
	if err := attributevalue.UnmarshalMap(map[string]types.AttributeValue(row), out); err != nil {
		return fmt.Errorf("writeset: unmarshal row: %w", err)
	}
	return nil
}

// MarshalKey converts a Go value into a PK using dynamodbav struct tags.
func MarshalKey(v any) (PK, error) {
	m, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("writeset: marshal key: %w", err)
	}
	return PK(m), nil
}

// versionOf extracts the managed version token from a stored item.
func versionOf(item map[string]types.AttributeValue, attr string) Version {
	if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
		return Version(v.Value)
	}
	return ""
}

// modifiedAtOf extracts the managed modification timestamp from a stored item.
func modifiedAtOf(item map[string]types.AttributeValue, attr string) time.Time {
	if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
		if ts, err := time.Parse(time.RFC3339, v.Value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// encodeScalar produces a canonical string form of a scalar attribute value,
// used for duplicate-key fingerprints and affinity hashing. Non-scalar values
// are not valid key components and encode to an empty marker.
func encodeScalar(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + v.Value
	case *types.AttributeValueMemberN:
		return "N:" + v.Value
	case *types.AttributeValueMemberB:
		return fmt.Sprintf("B:%x", v.Value)
	default:
		return ""
	}
}
