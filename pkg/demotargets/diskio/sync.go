package diskio

import (
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/runningwild/mtbench/pkg/bench"
)

// SyncTarget performs plain pread/pwrite against an open file, optionally
// with O_DIRECT. Buffers are block-aligned anonymous mmap regions, borrowed
// from a pool for the duration of one Execute call.
type SyncTarget struct {
	f         *os.File
	blockSize int
	bufPool   *alignedBufPool
}

// NewSyncTarget opens path for reading and writing, applying O_DIRECT when
// direct is true. blockSize must match the Engine's BlockSize.
func NewSyncTarget(path string, blockSize int, direct bool) (*SyncTarget, error) {
	flags := os.O_RDWR
	if direct {
		flags |= syscall.O_DIRECT
	}
	f, err := os.OpenFile(path, flags, 0o666)
	if err != nil {
		return nil, fmt.Errorf("diskio: %w", err)
	}
	return &SyncTarget{
		f:         f,
		blockSize: blockSize,
		bufPool:   newAlignedBufPool(blockSize),
	}, nil
}

func (t *SyncTarget) SetupForWorker()    {}
func (t *SyncTarget) TeardownForWorker() {}
func (t *SyncTarget) PreProcess()        {}
func (t *SyncTarget) PostProcess()       {}

func (t *SyncTarget) Execute(kind bench.OpKind, op bench.Operation) uint64 {
	ioOp := op.(IOOp)
	buf := t.bufPool.get()
	defer t.bufPool.put(buf)

	var err error
	if kind == Read {
		_, err = t.f.ReadAt(buf, ioOp.Offset)
	} else {
		_, err = t.f.WriteAt(buf, ioOp.Offset)
	}
	if err != nil && err != io.EOF {
		panic(fmt.Errorf("diskio: %w", err))
	}
	return 1
}

// Close releases the target's open file and pooled buffers. Call it after
// every worker has finished, not from SetupForWorker/TeardownForWorker.
func (t *SyncTarget) Close() error {
	t.bufPool.closeAll()
	return t.f.Close()
}

// alignedBufPool hands out anonymous-mmap, page-aligned buffers of a fixed
// size, suitable for O_DIRECT I/O. Buffers are tracked so they can be
// unmapped on Close.
type alignedBufPool struct {
	size int
	pool sync.Pool

	mu  sync.Mutex
	all [][]byte
}

func newAlignedBufPool(size int) *alignedBufPool {
	p := &alignedBufPool{size: size}
	p.pool.New = func() any {
		buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			panic(fmt.Errorf("diskio: mmap aligned buffer: %w", err))
		}
		p.mu.Lock()
		p.all = append(p.all, buf)
		p.mu.Unlock()
		return buf
	}
	return p
}

func (p *alignedBufPool) get() []byte    { return p.pool.Get().([]byte) }
func (p *alignedBufPool) put(buf []byte) { p.pool.Put(buf) }

func (p *alignedBufPool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, buf := range p.all {
		unix.Munmap(buf)
	}
	p.all = nil
}
