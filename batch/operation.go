package batch

// OpKind identifies one of the six write-operation variants. The set is
// closed: validation, execution, and reconciliation all switch exhaustively
// over it.
type OpKind int

const (
	// OpPutAlways writes the row unconditionally.
	OpPutAlways OpKind = iota

	// OpPutIfAbsent writes the row only if no row exists for its key.
	OpPutIfAbsent

	// OpPutIfPresent writes the row only if a row already exists for its key.
	OpPutIfPresent

	// OpPutIfVersion writes the row only if the existing row's version equals
	// the supplied match version.
	OpPutIfVersion

	// OpDelete removes the row unconditionally.
	OpDelete

	// OpDeleteIfVersion removes the row only if its version equals the
	// supplied match version.
	OpDeleteIfVersion
)

// String returns the kind's wire name.
func (k OpKind) String() string {
	switch k {
	case OpPutAlways:
		return "PutAlways"
	case OpPutIfAbsent:
		return "PutIfAbsent"
	case OpPutIfPresent:
		return "PutIfPresent"
	case OpPutIfVersion:
		return "PutIfVersion"
	case OpDelete:
		return "Delete"
	case OpDeleteIfVersion:
		return "DeleteIfVersion"
	default:
		return "Unknown"
	}
}

// IsPut reports whether the kind writes a row (as opposed to deleting one).
func (k OpKind) IsPut() bool {
	switch k {
	case OpPutAlways, OpPutIfAbsent, OpPutIfPresent, OpPutIfVersion:
		return true
	default:
		return false
	}
}

// Durability selects the write durability policy. DynamoDB persists every
// acknowledged write, so all policies behave as DurabilitySync; the value is
// validated and carried for stores that distinguish them.
type Durability int

const (
	// DurabilityDefault uses the store's configured durability.
	DurabilityDefault Durability = iota

	// DurabilitySync requires the write to be persisted before acknowledging.
	DurabilitySync

	// DurabilityNoSync acknowledges the write before it is persisted.
	DurabilityNoSync
)

// Options holds the per-operation settings shared by all kinds.
type Options struct {
	// TTL overrides the table's default expiration for this write.
	// The zero value inherits the table default.
	TTL TTL

	// ReturnExisting requests that when the operation's condition fails, the
	// conflicting row as seen at condition-evaluation time is disclosed in
	// the result, together with its version and modification time.
	ReturnExisting bool

	// Durability selects the write durability policy.
	Durability Durability
}

// validate checks the options independently of any batch-level invariant so
// a single malformed operation can be reported precisely.
func (o Options) validate() error {
	if err := o.TTL.validate(); err != nil {
		return err
	}
	switch o.Durability {
	case DurabilityDefault, DurabilitySync, DurabilityNoSync:
	default:
		return ErrInvalidDurability
	}
	return nil
}

// Operation is one write in a batch: its kind, target, payload, options, and
// whether its failure aborts the whole batch.
type Operation struct {
	Kind  OpKind
	Table string

	// Row is the full row for put kinds.
	Row Row

	// Key is the primary key for delete kinds.
	Key PK

	// MatchVersion is the token compared against the stored row's version
	// for OpPutIfVersion and OpDeleteIfVersion.
	MatchVersion Version

	Options Options

	// AbortOnFail requests all-or-nothing semantics: if this operation's
	// condition fails, every earlier effect in the batch is undone and no
	// later operation is evaluated.
	AbortOnFail bool
}

// validate checks the operation's own shape, before any schema or
// batch-level checks.
func (op *Operation) validate() error {
	switch op.Kind {
	case OpPutAlways, OpPutIfAbsent, OpPutIfPresent, OpPutIfVersion:
		if len(op.Row) == 0 {
			return errMissingRow
		}
	case OpDelete, OpDeleteIfVersion:
		if len(op.Key) == 0 {
			return errMissingKey
		}
	default:
		return errUnknownKind
	}

	switch op.Kind {
	case OpPutIfVersion, OpDeleteIfVersion:
		if op.MatchVersion.IsZero() {
			return ErrNilMatchVersion
		}
	}

	return op.Options.validate()
}

// key resolves the operation's primary key using the target table's schema.
func (op *Operation) key(schema *TableSchema) (PK, error) {
	if op.Kind.IsPut() {
		return schema.KeyOf(op.Row)
	}
	return op.Key, nil
}
