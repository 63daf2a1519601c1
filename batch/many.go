package batch

import "context"

// RowOutcome is the flattened outcome of one row in a PutMany or DeleteMany
// call.
type RowOutcome struct {
	Success bool

	// Version is the row's new version for applied puts.
	Version Version
}

// ManyResult is the flattened aggregate of a single-kind batch.
type ManyResult struct {
	// AllApplied reports whether every row's operation took effect.
	AllApplied bool

	// Outcomes correspond index for index to the input rows or keys.
	// Nil when the submission aborted.
	Outcomes []RowOutcome

	// FailedIndex names the aborting row when an all-or-nothing submission
	// failed; -1 otherwise.
	FailedIndex int

	Capacity *ConsumedCapacity
}

// PutMany writes rows to one table as a single batch of unconditional puts,
// under the same validation and atomicity rules as Execute.
func (e *Executor) PutMany(ctx context.Context, table string, rows []Row, opOpts Options, execOpts ExecuteOptions) (*ManyResult, error) {
	b := NewBatch()
	for _, row := range rows {
		b.PutAlways(table, row, opOpts, false)
	}
	return e.executeMany(ctx, table, b, execOpts)
}

// DeleteMany removes rows from one table as a single batch of unconditional
// deletes, under the same validation and atomicity rules as Execute.
func (e *Executor) DeleteMany(ctx context.Context, table string, keys []PK, opOpts Options, execOpts ExecuteOptions) (*ManyResult, error) {
	b := NewBatch()
	for _, key := range keys {
		b.Delete(table, key, opOpts, false)
	}
	return e.executeMany(ctx, table, b, execOpts)
}

func (e *Executor) executeMany(ctx context.Context, table string, b *Batch, execOpts ExecuteOptions) (*ManyResult, error) {
	res, err := e.Execute(ctx, table, b, execOpts)
	if err != nil {
		return nil, err
	}

	if !res.Success {
		return &ManyResult{
			AllApplied:  false,
			FailedIndex: res.FailedIndex,
			Capacity:    res.Capacity,
		}, nil
	}

	out := &ManyResult{
		AllApplied:  true,
		Outcomes:    make([]RowOutcome, len(res.Results)),
		FailedIndex: -1,
		Capacity:    res.Capacity,
	}
	for i, r := range res.Results {
		outcome := RowOutcome{Success: r.Applied()}
		if pr, ok := r.(*PutResult); ok {
			outcome.Version = pr.Version
		}
		if !outcome.Success {
			out.AllApplied = false
		}
		out.Outcomes[i] = outcome
	}
	return out, nil
}
