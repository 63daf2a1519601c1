package batch

// Batch accumulates an ordered sequence of write operations. The add methods
// return the same Batch so calls can be chained. A Batch must not be mutated
// concurrently with submission; once submitted it is treated as immutable.
type Batch struct {
	ops []Operation
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) add(op Operation) *Batch {
	b.ops = append(b.ops, op)
	return b
}

// PutAlways appends an unconditional put.
func (b *Batch) PutAlways(table string, row Row, opts Options, abortOnFail bool) *Batch {
	return b.add(Operation{
		Kind:        OpPutAlways,
		Table:       table,
		Row:         row,
		Options:     opts,
		AbortOnFail: abortOnFail,
	})
}

// PutIfAbsent appends a put that succeeds only if no row exists for the key.
func (b *Batch) PutIfAbsent(table string, row Row, opts Options, abortOnFail bool) *Batch {
	return b.add(Operation{
		Kind:        OpPutIfAbsent,
		Table:       table,
		Row:         row,
		Options:     opts,
		AbortOnFail: abortOnFail,
	})
}

// PutIfPresent appends a put that succeeds only if a row already exists.
func (b *Batch) PutIfPresent(table string, row Row, opts Options, abortOnFail bool) *Batch {
	return b.add(Operation{
		Kind:        OpPutIfPresent,
		Table:       table,
		Row:         row,
		Options:     opts,
		AbortOnFail: abortOnFail,
	})
}

// PutIfVersion appends a put that succeeds only if the existing row's version
// equals match.
func (b *Batch) PutIfVersion(table string, row Row, match Version, opts Options, abortOnFail bool) *Batch {
	return b.add(Operation{
		Kind:         OpPutIfVersion,
		Table:        table,
		Row:          row,
		MatchVersion: match,
		Options:      opts,
		AbortOnFail:  abortOnFail,
	})
}

// Delete appends an unconditional delete.
func (b *Batch) Delete(table string, key PK, opts Options, abortOnFail bool) *Batch {
	return b.add(Operation{
		Kind:        OpDelete,
		Table:       table,
		Key:         key,
		Options:     opts,
		AbortOnFail: abortOnFail,
	})
}

// DeleteIfVersion appends a delete that succeeds only if the row's version
// equals match.
func (b *Batch) DeleteIfVersion(table string, key PK, match Version, opts Options, abortOnFail bool) *Batch {
	return b.add(Operation{
		Kind:         OpDeleteIfVersion,
		Table:        table,
		Key:          key,
		MatchVersion: match,
		Options:      opts,
		AbortOnFail:  abortOnFail,
	})
}

// Len returns the number of accumulated operations.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ops)
}

// Operations returns a copy of the accumulated operations in submission order.
func (b *Batch) Operations() []Operation {
	if b == nil {
		return nil
	}
	out := make([]Operation, len(b.ops))
	copy(out, b.ops)
	return out
}

// hasAbort reports whether any operation is marked abort-on-fail.
func (b *Batch) hasAbort() bool {
	for i := range b.ops {
		if b.ops[i].AbortOnFail {
			return true
		}
	}
	return false
}
