package diskio

import "github.com/runningwild/mtbench/pkg/bench"

// Read and Write are the two operation kinds this plug-in reports
// latencies for.
const (
	Read bench.OpKind = iota
	Write
	// TotalKinds is the sentinel kind count for Engine.
	TotalKinds
)

// IOOp is the Operation payload yielded by this package's iterators: the
// block-aligned byte offset to read or write.
type IOOp struct {
	Offset int64
}
