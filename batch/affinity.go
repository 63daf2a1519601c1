package batch

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/arbelos/writeset/internal/shard"
)

// AffinityResolver maps a table and partition-key value to an opaque
// partition affinity group. All keys in a batch must resolve to one group.
type AffinityResolver interface {
	Group(table string, partitionKey types.AttributeValue) string
}

// hashAffinity is the default resolver: hash bucketing of the partition-key
// value, scoped to the table or its registered compatibility group.
type hashAffinity struct {
	numShards int
	registry  *Registry
}

func (a *hashAffinity) Group(table string, partitionKey types.AttributeValue) string {
	scope := table
	if a.registry != nil {
		if g, ok := a.registry.GroupOf(table); ok {
			scope = "grp:" + g
		}
	}
	return shard.Group(scope, encodeScalar(partitionKey), a.numShards)
}
