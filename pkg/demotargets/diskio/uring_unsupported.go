//go:build !linux

package diskio

import (
	"fmt"

	"github.com/runningwild/mtbench/pkg/bench"
)

// UringTarget is unavailable outside Linux; io_uring is a Linux-only
// kernel interface.
type UringTarget struct{}

func NewUringTarget(path string, blockSize int, direct bool, qd int) (*UringTarget, error) {
	return nil, fmt.Errorf("diskio: io_uring target is only supported on Linux")
}

func (t *UringTarget) SetupForWorker()    {}
func (t *UringTarget) TeardownForWorker() {}
func (t *UringTarget) PreProcess()        {}
func (t *UringTarget) PostProcess()       {}
func (t *UringTarget) Execute(kind bench.OpKind, op bench.Operation) uint64 { return 0 }
func (t *UringTarget) Close() error                                        { return nil }
