// Package shard derives partition-affinity group identifiers used to enforce
// batch co-location.
package shard

import (
	"fmt"
	"hash/fnv"
)

// Group computes the affinity group for a partition-key value within a scope
// (a table name, or a declared multi-table group name).
// With numShards=1, every key in the scope lands in group "00".
// With numShards>1, keys are bucketed by hash of the partition-key value.
func Group(scope, partitionValue string, numShards int) string {
	if numShards <= 1 {
		return fmt.Sprintf("%s#00", scope)
	}
	h := fnv.New32a()
	h.Write([]byte(partitionValue))
	bucket := h.Sum32() % uint32(numShards)
	return fmt.Sprintf("%s#%02x", scope, bucket)
}
