package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// FieldType classifies a declared field.
type FieldType int

const (
	FieldString FieldType = iota
	FieldNumber
	FieldBinary
	FieldBool
	FieldNull
	FieldList
	FieldMap
)

// String returns the field type's name.
func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldNumber:
		return "number"
	case FieldBinary:
		return "binary"
	case FieldBool:
		return "bool"
	case FieldNull:
		return "null"
	case FieldList:
		return "list"
	case FieldMap:
		return "map"
	default:
		return "unknown"
	}
}

// fieldTypeOf classifies an attribute value. Set members classify as lists.
func fieldTypeOf(av types.AttributeValue) FieldType {
	switch av.(type) {
	case *types.AttributeValueMemberS:
		return FieldString
	case *types.AttributeValueMemberN:
		return FieldNumber
	case *types.AttributeValueMemberB:
		return FieldBinary
	case *types.AttributeValueMemberBOOL:
		return FieldBool
	case *types.AttributeValueMemberNULL:
		return FieldNull
	case *types.AttributeValueMemberL, *types.AttributeValueMemberSS,
		*types.AttributeValueMemberNS, *types.AttributeValueMemberBS:
		return FieldList
	default:
		return FieldMap
	}
}

// TableSchema is the declared shape of a table: its known field types and the
// ordered primary-key field list (partition key first).
type TableSchema struct {
	Name string

	// Fields maps declared field names to types. Undeclared fields are
	// allowed in rows unless exact-match validation is requested.
	Fields map[string]FieldType

	// KeyFields is the ordered list of primary-key field names.
	KeyFields []string

	// DefaultTTL is the table's default row expiration.
	DefaultTTL TTL
}

// KeyOf extracts the primary key from a row, failing if any key field is
// missing or non-scalar.
func (s *TableSchema) KeyOf(row Row) (PK, error) {
	key := make(PK, len(s.KeyFields))
	for _, field := range s.KeyFields {
		av, ok := row[field]
		if !ok {
			return nil, fmt.Errorf("row is missing key field %q", field)
		}
		if encodeScalar(av) == "" {
			return nil, fmt.Errorf("key field %q must be a scalar", field)
		}
		key[field] = av
	}
	return key, nil
}

// partitionField returns the table's partition-key field name.
func (s *TableSchema) partitionField() string {
	if len(s.KeyFields) == 0 {
		return ""
	}
	return s.KeyFields[0]
}

// SchemaSource resolves table schemas for pre-flight validation.
type SchemaSource interface {
	TableSchema(ctx context.Context, table string) (*TableSchema, error)
}

// StaticSchemaSource resolves schemas from a fixed in-memory set.
type StaticSchemaSource struct {
	Tables map[string]*TableSchema
}

// TableSchema implements SchemaSource.
func (s *StaticSchemaSource) TableSchema(_ context.Context, table string) (*TableSchema, error) {
	schema, ok := s.Tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return schema, nil
}

// DescribeSchemaSource resolves schemas by describing tables, memoizing
// results. Only key attributes are declared by DynamoDB, so Fields contains
// the key attribute types and exact-match validation is limited to them.
type DescribeSchemaSource struct {
	Client DynamoDB

	mu    sync.Mutex
	cache map[string]*TableSchema
}

// NewDescribeSchemaSource creates a schema source backed by DescribeTable.
func NewDescribeSchemaSource(client DynamoDB) *DescribeSchemaSource {
	return &DescribeSchemaSource{
		Client: client,
		cache:  make(map[string]*TableSchema),
	}
}

// TableSchema implements SchemaSource.
func (s *DescribeSchemaSource) TableSchema(ctx context.Context, table string) (*TableSchema, error) {
	s.mu.Lock()
	if schema, ok := s.cache[table]; ok {
		s.mu.Unlock()
		return schema, nil
	}
	s.mu.Unlock()

	out, err := s.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
		}
		return nil, err
	}

	schema := &TableSchema{
		Name:       table,
		Fields:     make(map[string]FieldType),
		DefaultTTL: TableDefaultTTL(),
	}
	for _, def := range out.Table.AttributeDefinitions {
		var ft FieldType
		switch def.AttributeType {
		case types.ScalarAttributeTypeN:
			ft = FieldNumber
		case types.ScalarAttributeTypeB:
			ft = FieldBinary
		default:
			ft = FieldString
		}
		schema.Fields[aws.ToString(def.AttributeName)] = ft
	}

	// KeySchema lists HASH before RANGE.
	for _, ks := range out.Table.KeySchema {
		schema.KeyFields = append(schema.KeyFields, aws.ToString(ks.AttributeName))
	}

	s.mu.Lock()
	s.cache[table] = schema
	s.mu.Unlock()

	return schema, nil
}
