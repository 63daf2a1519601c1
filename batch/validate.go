package batch

import (
	"fmt"
	"sort"
	"strings"
)

// MaxBatchOperations is the hard ceiling on operations per batch.
const MaxBatchOperations = 100

// validateOperation checks one operation against its table's schema. It is
// pure and shared by the batch and the single-kind convenience paths.
func validateOperation(op *Operation, schema *TableSchema, exact bool) error {
	if err := op.validate(); err != nil {
		return err
	}

	if op.Kind.IsPut() {
		for _, field := range schema.KeyFields {
			av, ok := op.Row[field]
			if !ok {
				return fmt.Errorf("row is missing key field %q", field)
			}
			if err := checkFieldType(schema, field, fieldTypeOf(av), true); err != nil {
				return err
			}
		}
		if exact {
			for field, av := range op.Row {
				if _, declared := schema.Fields[field]; !declared {
					return fmt.Errorf("field %q is not declared in table %q", field, schema.Name)
				}
				if err := checkFieldType(schema, field, fieldTypeOf(av), false); err != nil {
					return err
				}
			}
		}
		return nil
	}

	// Deletes carry a bare primary key: exactly the key fields, no more.
	if len(op.Key) != len(schema.KeyFields) {
		return fmt.Errorf("primary key must have exactly the fields %v", schema.KeyFields)
	}
	for _, field := range schema.KeyFields {
		av, ok := op.Key[field]
		if !ok {
			return fmt.Errorf("primary key is missing field %q", field)
		}
		if err := checkFieldType(schema, field, fieldTypeOf(av), true); err != nil {
			return err
		}
	}
	return nil
}

func checkFieldType(schema *TableSchema, field string, got FieldType, key bool) error {
	if key {
		switch got {
		case FieldString, FieldNumber, FieldBinary:
		default:
			return fmt.Errorf("key field %q must be a scalar, got %s", field, got)
		}
	}
	declared, ok := schema.Fields[field]
	if !ok {
		return nil
	}
	if declared != got {
		return fmt.Errorf("field %q has type %s, table %q declares %s", field, got, schema.Name, declared)
	}
	return nil
}

// keyFingerprint produces a canonical encoding of a primary key's values.
// Batch uniqueness is defined over key-field values only, regardless of table.
func keyFingerprint(key PK) string {
	fields := make([]string, 0, len(key))
	for f := range key {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(f)
		sb.WriteByte('=')
		sb.WriteString(encodeScalar(key[f]))
		sb.WriteByte('|')
	}
	return sb.String()
}

// validateShape runs every check that needs no table schema: batch emptiness
// and size, per-operation validity, single-table mode, and multi-table
// compatibility. It runs before any schema lookup so malformed batches never
// reach the network.
func validateShape(ops []Operation, table string, registry *Registry) error {
	if len(ops) == 0 {
		return &ValidationError{Index: -1, Err: ErrEmptyBatch}
	}
	if len(ops) > MaxBatchOperations {
		return &BatchSizeError{Count: len(ops), Max: MaxBatchOperations}
	}

	var tables []string
	seenTables := make(map[string]bool)
	for i := range ops {
		if err := ops[i].validate(); err != nil {
			return &ValidationError{Index: i, Err: err}
		}
		if table != "" && ops[i].Table != table {
			return &ValidationError{Index: i, Err: ErrTableMismatch}
		}
		if !seenTables[ops[i].Table] {
			seenTables[ops[i].Table] = true
			tables = append(tables, ops[i].Table)
		}
	}
	if table == "" && len(tables) > 1 {
		if registry == nil || !registry.Compatible(tables) {
			return &ValidationError{Index: -1, Err: ErrIncompatibleTables}
		}
	}
	return nil
}

// validateAgainstSchemas runs the schema-dependent checks: key shape, field
// types, duplicate keys, and shard affinity. Callers run validateShape first.
func validateAgainstSchemas(ops []Operation, schemas map[string]*TableSchema, affinity AffinityResolver, exact bool) error {
	seen := make(map[string]int, len(ops))
	var group string
	groupSet := false

	for i := range ops {
		op := &ops[i]

		schema, ok := schemas[op.Table]
		if !ok {
			return &ValidationError{Index: i, Err: fmt.Errorf("%w: %s", ErrTableNotFound, op.Table)}
		}
		if err := validateOperation(op, schema, exact); err != nil {
			return &ValidationError{Index: i, Err: err}
		}

		key, err := op.key(schema)
		if err != nil {
			return &ValidationError{Index: i, Err: err}
		}

		fp := keyFingerprint(key)
		if prev, dup := seen[fp]; dup {
			return &ValidationError{Index: i, Err: fmt.Errorf("%w (operations %d and %d)", ErrDuplicateKey, prev, i)}
		}
		seen[fp] = i

		// The empty string is a legitimate group name, so first-group state
		// is tracked separately.
		g := affinity.Group(op.Table, key[schema.partitionField()])
		if !groupSet {
			group = g
			groupSet = true
		} else if g != group {
			return &ValidationError{Index: i, Err: ErrCrossShard}
		}
	}

	return nil
}
