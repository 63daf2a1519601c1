package batch

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExistingRow discloses the conflicting row behind a failed conditional
// operation, as the store saw it when the condition was evaluated.
type ExistingRow struct {
	Row        Row
	Version    Version
	ModifiedAt time.Time
}

// OpResult is the outcome of one operation. Concrete types are PutResult and
// DeleteResult, matching the operation's kind.
type OpResult interface {
	// Applied reports whether the operation took effect.
	Applied() bool

	// Conflict returns the existing-row disclosure for a failed conditional
	// operation, or nil when none was requested or none exists.
	Conflict() *ExistingRow
}

// PutResult is the outcome of a put operation.
type PutResult struct {
	// Success reports whether the put was applied.
	Success bool

	// Version is the row's new version token when Success is true.
	Version Version

	// Existing is the conflicting-row disclosure on failure, if requested.
	Existing *ExistingRow
}

func (r *PutResult) Applied() bool          { return r.Success }
func (r *PutResult) Conflict() *ExistingRow { return r.Existing }

// DeleteResult is the outcome of a delete operation. Deletes never carry a
// new version.
type DeleteResult struct {
	// Success reports whether the delete was applied.
	Success bool

	// Existing is the conflicting-row disclosure on failure, if requested.
	Existing *ExistingRow
}

func (r *DeleteResult) Applied() bool          { return r.Success }
func (r *DeleteResult) Conflict() *ExistingRow { return r.Existing }

// BatchResult is the aggregate outcome of one batch submission.
//
// On Success, Results holds one OpResult per submitted operation, index for
// index in submission order; individual operations may still report their
// own condition failures. On an all-or-nothing abort, Success is false,
// FailedIndex names the triggering operation, Failed carries its result, and
// Results is nil.
type BatchResult struct {
	Success bool

	Results []OpResult

	// FailedIndex is the position of the aborting operation, -1 on success.
	FailedIndex int

	// Failed is the aborting operation's result.
	Failed OpResult

	// Capacity is the cost accrued by applied operations. Nil when the
	// deployment does not report capacity, and on an all-or-nothing abort:
	// the store reports no capacity for a cancelled transaction, so the cost
	// of evaluating the failed batch is not observable.
	Capacity *ConsumedCapacity
}

// rawResult is the transport-level outcome of one operation, before
// reconciliation into its typed shape.
type rawResult struct {
	applied  bool
	version  Version
	existing map[string]types.AttributeValue
}

// reconcile converts raw outcomes into typed per-operation results,
// preserving submission order exactly.
func reconcile(ops []Operation, raws []rawResult, cfg *Config) []OpResult {
	results := make([]OpResult, len(ops))
	for i := range ops {
		results[i] = reconcileOne(&ops[i], raws[i], cfg)
	}
	return results
}

// reconcileOne maps one raw outcome to the shape of its operation's kind.
func reconcileOne(op *Operation, raw rawResult, cfg *Config) OpResult {
	var existing *ExistingRow
	if !raw.applied && op.Options.ReturnExisting && len(raw.existing) > 0 {
		existing = disclose(raw.existing, cfg)
	}

	if op.Kind.IsPut() {
		res := &PutResult{Success: raw.applied, Existing: existing}
		if raw.applied {
			res.Version = raw.version
		}
		return res
	}
	return &DeleteResult{Success: raw.applied, Existing: existing}
}

// disclose extracts the caller-visible row and its managed metadata from a
// stored item.
func disclose(item map[string]types.AttributeValue, cfg *Config) *ExistingRow {
	row := make(Row, len(item))
	for k, v := range item {
		if k == cfg.VersionAttribute || k == cfg.ModifiedAtAttribute {
			continue
		}
		row[k] = v
	}
	return &ExistingRow{
		Row:        row,
		Version:    versionOf(item, cfg.VersionAttribute),
		ModifiedAt: modifiedAtOf(item, cfg.ModifiedAtAttribute),
	}
}
