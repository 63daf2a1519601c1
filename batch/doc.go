// Package batch provides conditional write batches for DynamoDB tables.
//
// writeset submits an ordered, heterogeneous sequence of put/delete
// operations as a single request, in one of two modes: best-effort
// independent application of each operation, or strict all-or-nothing
// atomicity, and maps the aggregate response back into typed per-operation
// results.
//
// # Operation Kinds
//
// Six kinds cover unconditional and conditional writes:
//
//   - [OpPutAlways] - write the row regardless of current state
//   - [OpPutIfAbsent] - write only if no row exists for the key
//   - [OpPutIfPresent] - write only if a row already exists
//   - [OpPutIfVersion] - write only if the stored version matches
//   - [OpDelete] - remove the row regardless of current state
//   - [OpDeleteIfVersion] - remove only if the stored version matches
//
// Every successful put stores a fresh opaque [Version] token under a managed
// attribute; version-conditional operations compare against it. Rows also
// carry a managed modification timestamp and an optional TTL attribute
// resolved from the per-write [TTL], else the table default.
//
// # Building and Executing
//
// Operations accumulate on a [Batch] through chained add methods and are
// submitted through [Executor.Execute]:
//
//	b := batch.NewBatch().
//	    PutIfAbsent("users", row1, batch.Options{}, false).
//	    Delete("users", key2, batch.Options{}, false)
//	res, err := exec.Execute(ctx, "users", b, batch.ExecuteOptions{})
//
// Validation runs before any write is sent: key shape against the table
// schema, the operation-count ceiling ([MaxBatchOperations], reported as
// [BatchSizeError]), duplicate primary keys, and partition-affinity
// co-location. Multi-table batches (table "") additionally require a
// [Registry] declaring the tables compatible.
//
// # Atomicity
//
// With no abort flags, each operation applies independently: the result is
// always Success=true with one result per operation, each carrying its own
// success flag. Marking an operation abort-on-fail (or setting
// ExecuteOptions.AbortOnFail for the whole batch) makes its failure undo
// every effect of the batch and stop later operations; the result then
// carries FailedIndex and the triggering operation's disclosure. Unmarked
// operations that fail their own condition never abort a mixed batch.
//
// # Errors
//
// Validation failures surface as errors before submission; condition
// failures are data on the [BatchResult]. A transport or timeout failure
// after submission is an [IndeterminateError]: whether the batch applied is
// unknown, and the caller must re-read affected keys (see [Executor.Get])
// before retrying. The package never retries internally.
package batch
