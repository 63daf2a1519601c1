package batch

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TTLUnit is the duration unit for an explicit row expiration.
type TTLUnit int

const (
	// TTLHours expresses the TTL duration in hours.
	TTLHours TTLUnit = iota

	// TTLDays expresses the TTL duration in days.
	TTLDays
)

type ttlKind int

const (
	ttlTableDefault ttlKind = iota
	ttlDuration
	ttlNever
)

// TTL describes a row's time-to-live: inherit the table default, an explicit
// duration, or the "never expires" sentinel. The zero value inherits the
// table default.
type TTL struct {
	kind  ttlKind
	value int64
	unit  TTLUnit
}

// TableDefaultTTL returns a TTL that inherits the table's default expiration.
func TableDefaultTTL() TTL {
	return TTL{kind: ttlTableDefault}
}

// TTLOfHours returns an explicit TTL of n hours from write time.
func TTLOfHours(n int64) TTL {
	return TTL{kind: ttlDuration, value: n, unit: TTLHours}
}

// TTLOfDays returns an explicit TTL of n days from write time.
func TTLOfDays(n int64) TTL {
	return TTL{kind: ttlDuration, value: n, unit: TTLDays}
}

// NoExpiration returns the "never expires" sentinel.
func NoExpiration() TTL {
	return TTL{kind: ttlNever}
}

// IsTableDefault reports whether the TTL inherits the table default.
func (t TTL) IsTableDefault() bool { return t.kind == ttlTableDefault }

// NeverExpires reports whether the TTL is the "never expires" sentinel.
func (t TTL) NeverExpires() bool { return t.kind == ttlNever }

// validate rejects negative explicit durations.
func (t TTL) validate() error {
	if t.kind == ttlDuration && t.value < 0 {
		return ErrNegativeTTL
	}
	return nil
}

// duration converts an explicit TTL into a time.Duration.
func (t TTL) duration() time.Duration {
	if t.unit == TTLDays {
		return time.Duration(t.value) * 24 * time.Hour
	}
	return time.Duration(t.value) * time.Hour
}

// resolveTTL resolves a per-write TTL against a table default:
// explicit per-write TTL, else the table default, else no expiration.
func resolveTTL(op, tableDefault TTL) TTL {
	if !op.IsTableDefault() {
		return op
	}
	if !tableDefault.IsTableDefault() {
		return tableDefault
	}
	return NoExpiration()
}

// expiry returns the resolved expiration as unix seconds. ok is false when
// the row never expires.
func (t TTL) expiry(now time.Time) (int64, bool) {
	if t.kind != ttlDuration {
		return 0, false
	}
	return now.Add(t.duration()).Unix(), true
}

// formatUnix renders unix seconds as a DynamoDB number value.
func formatUnix(sec int64) string {
	return strconv.FormatInt(sec, 10)
}

// IsExpired checks whether an item's TTL attribute marks it expired.
func IsExpired(item map[string]types.AttributeValue, ttlAttr string) bool {
	av, exists := item[ttlAttr]
	if !exists {
		return false // no TTL = live
	}
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	ttl, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return false
	}
	return ttl <= time.Now().Unix()
}
