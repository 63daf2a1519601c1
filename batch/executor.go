package batch

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Executor submits batches and reconciles their aggregate outcome. It holds
// no per-call state, so concurrent submissions need no coordination.
type Executor struct {
	client   DynamoDB
	config   Config
	schemas  SchemaSource
	registry *Registry
	affinity AffinityResolver
}

// NewExecutor creates an Executor for single-table batches.
func NewExecutor(client DynamoDB, schemas SchemaSource, config Config) *Executor {
	config.validate()
	return &Executor{
		client:   client,
		config:   config,
		schemas:  schemas,
		affinity: &hashAffinity{numShards: config.NumShards},
	}
}

// NewExecutorWithRegistry creates an Executor that additionally accepts
// multi-table batches across tables the registry declares compatible.
func NewExecutorWithRegistry(client DynamoDB, schemas SchemaSource, config Config, registry *Registry) *Executor {
	config.validate()
	return &Executor{
		client:   client,
		config:   config,
		schemas:  schemas,
		registry: registry,
		affinity: &hashAffinity{numShards: config.NumShards, registry: registry},
	}
}

// SetAffinityResolver replaces the default hash-bucketing resolver.
func (e *Executor) SetAffinityResolver(r AffinityResolver) {
	e.affinity = r
}

// ExecuteOptions configures one batch submission.
type ExecuteOptions struct {
	// AbortOnFail marks every operation abort-required, making the whole
	// batch all-or-nothing.
	AbortOnFail bool

	// ExactSchema rejects row fields not declared in the table schema.
	ExactSchema bool

	// Timeout bounds the whole submission. Zero means no executor-imposed
	// deadline. Individual operations cannot be timed out separately.
	Timeout time.Duration

	// ReturnCapacity requests consumed-capacity accounting.
	ReturnCapacity bool
}

// Execute validates and submits a batch, returning its aggregate outcome.
//
// table selects single-table mode; pass "" for a multi-table batch, which
// requires a registry declaring the referenced tables compatible.
//
// Validation failures are returned as errors before any write is sent.
// Condition failures are data: inspect the BatchResult. A transport or
// timeout failure after submission is returned as *IndeterminateError and
// says nothing about whether the batch applied.
func (e *Executor) Execute(ctx context.Context, table string, b *Batch, opts ExecuteOptions) (*BatchResult, error) {
	ops := b.Operations()

	// Schema-free checks come first so malformed batches fail before the
	// schema lookup touches the network.
	if err := validateShape(ops, table, e.registry); err != nil {
		return nil, err
	}

	schemas := make(map[string]*TableSchema)
	for i := range ops {
		t := ops[i].Table
		if _, ok := schemas[t]; ok {
			continue
		}
		schema, err := e.schemas.TableSchema(ctx, t)
		if err != nil {
			return nil, err
		}
		schemas[t] = schema
	}

	if err := validateAgainstSchemas(ops, schemas, e.affinity, opts.ExactSchema); err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if opts.AbortOnFail || b.hasAbort() {
		return e.executeAtomic(ctx, ops, schemas, opts)
	}
	return e.executeIndependent(ctx, ops, schemas, opts)
}

// executeIndependent applies every operation on its own, in submission
// order. Condition failures are recorded per operation and never stop the
// batch.
func (e *Executor) executeIndependent(ctx context.Context, ops []Operation, schemas map[string]*TableSchema, opts ExecuteOptions) (*BatchResult, error) {
	e.config.Logger.Debug("executing batch", "mode", "independent", "operations", len(ops))

	now := time.Now()
	raws := make([]rawResult, len(ops))
	var capacity *ConsumedCapacity

	for i := range ops {
		op := &ops[i]
		raw, cc, err := e.applyOne(ctx, op, schemas[op.Table], now, opts.ReturnCapacity)
		if err != nil {
			return nil, e.submitError(err)
		}
		raws[i] = raw
		if opts.ReturnCapacity && cc != nil {
			if capacity == nil {
				capacity = &ConsumedCapacity{}
			}
			capacity.add(cc)
		}
		if !raw.applied {
			e.config.Logger.Debug("condition failed", "index", i, "kind", op.Kind.String(), "table", op.Table)
		}
	}

	return &BatchResult{
		Success:     true,
		Results:     reconcile(ops, raws, &e.config),
		FailedIndex: -1,
		Capacity:    capacity,
	}, nil
}

// applyOne sends a single conditional write. A failed condition is an
// outcome, not an error.
func (e *Executor) applyOne(ctx context.Context, op *Operation, schema *TableSchema, now time.Time, wantCapacity bool) (rawResult, *types.ConsumedCapacity, error) {
	condition, names, values := e.condition(op, schema)

	returnCap := types.ReturnConsumedCapacityNone
	if wantCapacity {
		returnCap = types.ReturnConsumedCapacityTotal
	}
	rv := types.ReturnValuesOnConditionCheckFailureNone
	if op.Options.ReturnExisting {
		rv = types.ReturnValuesOnConditionCheckFailureAllOld
	}

	if op.Kind.IsPut() {
		version := newVersion()
		out, err := e.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                           aws.String(op.Table),
			Item:                                e.storedItem(op, schema, version, now),
			ConditionExpression:                 condition,
			ExpressionAttributeNames:            names,
			ExpressionAttributeValues:           values,
			ReturnConsumedCapacity:              returnCap,
			ReturnValuesOnConditionCheckFailure: rv,
		})
		if err != nil {
			var ccf *types.ConditionalCheckFailedException
			if errors.As(err, &ccf) {
				return rawResult{applied: false, existing: ccf.Item}, nil, nil
			}
			return rawResult{}, nil, err
		}
		return rawResult{applied: true, version: version}, out.ConsumedCapacity, nil
	}

	out, err := e.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                           aws.String(op.Table),
		Key:                                 op.Key,
		ConditionExpression:                 condition,
		ExpressionAttributeNames:            names,
		ExpressionAttributeValues:           values,
		ReturnConsumedCapacity:              returnCap,
		ReturnValuesOnConditionCheckFailure: rv,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return rawResult{applied: false, existing: ccf.Item}, nil, nil
		}
		return rawResult{}, nil, err
	}
	return rawResult{applied: true}, out.ConsumedCapacity, nil
}

// executeAtomic submits the batch as one transaction. A failed condition on
// an abort-required operation cancels everything; a failed condition on an
// unmarked operation is carved out and the remainder re-submitted, so it
// never aborts the batch.
func (e *Executor) executeAtomic(ctx context.Context, ops []Operation, schemas map[string]*TableSchema, opts ExecuteOptions) (*BatchResult, error) {
	e.config.Logger.Debug("executing batch", "mode", "atomic", "operations", len(ops))

	now := time.Now()

	// Versions are issued once so carve-out re-submissions write the same
	// tokens.
	versions := make([]Version, len(ops))
	for i := range ops {
		if ops[i].Kind.IsPut() {
			versions[i] = newVersion()
		}
	}

	raws := make([]rawResult, len(ops))
	active := make([]int, 0, len(ops))
	for i := range ops {
		active = append(active, i)
	}

	for len(active) > 0 {
		items := make([]types.TransactWriteItem, 0, len(active))
		for _, idx := range active {
			items = append(items, e.transactItem(&ops[idx], schemas[ops[idx].Table], versions[idx], now))
		}

		input := &dynamodb.TransactWriteItemsInput{TransactItems: items}
		if opts.ReturnCapacity {
			input.ReturnConsumedCapacity = types.ReturnConsumedCapacityTotal
		}

		out, err := e.client.TransactWriteItems(ctx, input)
		if err == nil {
			for _, idx := range active {
				raws[idx] = rawResult{applied: true, version: versions[idx]}
			}
			return &BatchResult{
				Success:     true,
				Results:     reconcile(ops, raws, &e.config),
				FailedIndex: -1,
				Capacity:    mergeCapacity(out.ConsumedCapacity),
			}, nil
		}

		var canceled *types.TransactionCanceledException
		if !errors.As(err, &canceled) {
			return nil, e.submitError(err)
		}

		failed := make(map[int]bool)
		for ri := range canceled.CancellationReasons {
			reason := &canceled.CancellationReasons[ri]
			if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
				continue
			}
			idx := active[ri]
			if opts.AbortOnFail || ops[idx].AbortOnFail {
				// First abort-required failure in submission order wins: the
				// transaction applied nothing, so the batch is fully undone.
				e.config.Logger.Debug("batch aborted", "index", idx, "kind", ops[idx].Kind.String())
				return &BatchResult{
					Success:     false,
					FailedIndex: idx,
					Failed:      reconcileOne(&ops[idx], rawResult{existing: reason.Item}, &e.config),
				}, nil
			}
			raws[idx] = rawResult{applied: false, existing: reason.Item}
			failed[idx] = true
		}

		if len(failed) == 0 {
			// Canceled for a non-conditional reason (conflict, throttle).
			return nil, &IndeterminateError{Err: err}
		}

		e.config.Logger.Debug("carving out failed operations", "count", len(failed))
		next := active[:0]
		for _, idx := range active {
			if !failed[idx] {
				next = append(next, idx)
			}
		}
		active = next
	}

	// Every operation failed its own condition; nothing was left to send.
	return &BatchResult{
		Success:     true,
		Results:     reconcile(ops, raws, &e.config),
		FailedIndex: -1,
	}, nil
}

// storedItem builds the item as written: the caller's row plus the managed
// version, modification-time, and TTL attributes.
func (e *Executor) storedItem(op *Operation, schema *TableSchema, version Version, now time.Time) map[string]types.AttributeValue {
	item := make(map[string]types.AttributeValue, len(op.Row)+3)
	for k, v := range op.Row {
		item[k] = v
	}
	item[e.config.VersionAttribute] = &types.AttributeValueMemberS{Value: string(version)}
	item[e.config.ModifiedAtAttribute] = &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)}

	ttl := resolveTTL(op.Options.TTL, schema.DefaultTTL)
	if exp, ok := ttl.expiry(now); ok {
		item[e.config.TTLAttribute] = &types.AttributeValueMemberN{Value: formatUnix(exp)}
	}
	return item
}

// condition builds the condition expression for an operation's kind.
func (e *Executor) condition(op *Operation, schema *TableSchema) (*string, map[string]string, map[string]types.AttributeValue) {
	switch op.Kind {
	case OpPutIfAbsent:
		return aws.String("attribute_not_exists(#k)"),
			map[string]string{"#k": schema.partitionField()},
			nil
	case OpPutIfPresent:
		return aws.String("attribute_exists(#k)"),
			map[string]string{"#k": schema.partitionField()},
			nil
	case OpPutIfVersion, OpDeleteIfVersion:
		return aws.String("#ver = :match"),
			map[string]string{"#ver": e.config.VersionAttribute},
			map[string]types.AttributeValue{
				":match": &types.AttributeValueMemberS{Value: string(op.MatchVersion)},
			}
	default:
		return nil, nil, nil
	}
}

// transactItem builds the transaction entry for one operation.
func (e *Executor) transactItem(op *Operation, schema *TableSchema, version Version, now time.Time) types.TransactWriteItem {
	condition, names, values := e.condition(op, schema)
	rv := types.ReturnValuesOnConditionCheckFailureNone
	if op.Options.ReturnExisting {
		rv = types.ReturnValuesOnConditionCheckFailureAllOld
	}

	if op.Kind.IsPut() {
		return types.TransactWriteItem{
			Put: &types.Put{
				TableName:                           aws.String(op.Table),
				Item:                                e.storedItem(op, schema, version, now),
				ConditionExpression:                 condition,
				ExpressionAttributeNames:            names,
				ExpressionAttributeValues:           values,
				ReturnValuesOnConditionCheckFailure: rv,
			},
		}
	}
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName:                           aws.String(op.Table),
			Key:                                 op.Key,
			ConditionExpression:                 condition,
			ExpressionAttributeNames:            names,
			ExpressionAttributeValues:           values,
			ReturnValuesOnConditionCheckFailure: rv,
		},
	}
}

// submitError classifies a post-validation failure: a missing table is
// definite, anything else leaves the batch outcome unknown.
func (e *Executor) submitError(err error) error {
	var nf *types.ResourceNotFoundException
	if errors.As(err, &nf) {
		return ErrTableNotFound
	}
	return &IndeterminateError{Err: err}
}

// Get reads a row by primary key. Rows whose TTL has passed read as absent.
// Useful for the read-after-timeout reconciliation an IndeterminateError
// requires.
func (e *Executor) Get(ctx context.Context, table string, key PK) (Row, Version, error) {
	out, err := e.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return nil, "", ErrTableNotFound
		}
		return nil, "", err
	}
	if out.Item == nil {
		return nil, "", ErrNotFound
	}
	if IsExpired(out.Item, e.config.TTLAttribute) {
		return nil, "", ErrNotFound
	}

	d := disclose(out.Item, &e.config)
	return d.Row, d.Version, nil
}
