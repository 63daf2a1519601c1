package batch

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Read and write units normalize to these payload sizes.
const (
	readUnitKB  = 4
	writeUnitKB = 1
)

// ConsumedCapacity aggregates the read/write cost of a batch. Present only
// when the deployment reports capacity; accrues only for operations that
// were actually sent to the store.
type ConsumedCapacity struct {
	ReadUnits  float64
	WriteUnits float64
	ReadKB     float64
	WriteKB    float64
}

// add accrues one AWS capacity record. Records reporting only total units
// count as write capacity, since every call here is a write.
func (c *ConsumedCapacity) add(cc *types.ConsumedCapacity) {
	if cc == nil {
		return
	}
	read := aws.ToFloat64(cc.ReadCapacityUnits)
	write := aws.ToFloat64(cc.WriteCapacityUnits)
	if read == 0 && write == 0 {
		write = aws.ToFloat64(cc.CapacityUnits)
	}
	c.ReadUnits += read
	c.WriteUnits += write
	c.ReadKB += read * readUnitKB
	c.WriteKB += write * writeUnitKB
}

// mergeCapacity accrues a list of capacity records, returning nil when
// nothing was reported.
func mergeCapacity(caps []types.ConsumedCapacity) *ConsumedCapacity {
	if len(caps) == 0 {
		return nil
	}
	out := &ConsumedCapacity{}
	for i := range caps {
		out.add(&caps[i])
	}
	return out
}
