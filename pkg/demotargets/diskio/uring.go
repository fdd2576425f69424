//go:build linux

package diskio

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"

	"github.com/godzie44/go-uring/uring"
	"golang.org/x/sys/unix"

	"github.com/runningwild/mtbench/pkg/bench"
)

// UringTarget performs one io_uring submission/completion round trip per
// Execute call. Queue depth is per ring rather than per call: rings and
// their aligned buffers are borrowed from a pool, same as SyncTarget's
// buffers, so a worker never blocks waiting on another worker's ring.
type UringTarget struct {
	f         *os.File
	blockSize int
	ringPool  *uringPool
}

// NewUringTarget opens path for reading and writing, applying O_DIRECT when
// direct is true, and prepares a pool of rings with queue depth qd each.
func NewUringTarget(path string, blockSize int, direct bool, qd int) (*UringTarget, error) {
	flags := os.O_RDWR
	if direct {
		flags |= syscall.O_DIRECT
	}
	f, err := os.OpenFile(path, flags, 0o666)
	if err != nil {
		return nil, fmt.Errorf("diskio: %w", err)
	}
	if qd <= 0 {
		qd = 1
	}
	return &UringTarget{
		f:         f,
		blockSize: blockSize,
		ringPool:  newURingPool(blockSize, qd),
	}, nil
}

func (t *UringTarget) SetupForWorker()    {}
func (t *UringTarget) TeardownForWorker() {}
func (t *UringTarget) PreProcess()        {}
func (t *UringTarget) PostProcess()       {}

func (t *UringTarget) Execute(kind bench.OpKind, op bench.Operation) uint64 {
	ioOp := op.(IOOp)
	res := t.ringPool.get()
	defer t.ringPool.put(res)

	var ringOp uring.Operation
	if kind == Read {
		ringOp = uring.Read(t.f.Fd(), res.buf, uint64(ioOp.Offset))
	} else {
		ringOp = uring.Write(t.f.Fd(), res.buf, uint64(ioOp.Offset))
	}

	if err := res.ring.QueueSQE(ringOp, 0, 0); err != nil {
		panic(fmt.Errorf("diskio: queue sqe: %w", err))
	}
	for {
		if _, err := res.ring.Submit(); err == nil || !isEINTR(err) {
			if err != nil {
				panic(fmt.Errorf("diskio: submit: %w", err))
			}
			break
		}
	}

	var cqe *uring.CQEvent
	var err error
	for {
		cqe, err = res.ring.WaitCQEvents(1)
		if err == nil || !isEINTR(err) {
			break
		}
	}
	if err != nil {
		panic(fmt.Errorf("diskio: wait cqe: %w", err))
	}
	if cqe.Res < 0 {
		panic(fmt.Errorf("diskio: %w", syscall.Errno(-cqe.Res)))
	}
	res.ring.SeenCQE(cqe)
	return 1
}

// Close releases the target's open file and pooled rings/buffers.
func (t *UringTarget) Close() error {
	t.ringPool.closeAll()
	return t.f.Close()
}

func isEINTR(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EINTR) {
		return true
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return sysErr.Err == syscall.EINTR
	}
	return false
}

// uringRingBuf pairs one ring with the aligned buffer its one in-flight
// operation uses.
type uringRingBuf struct {
	ring *uring.Ring
	buf  []byte
}

type uringPool struct {
	blockSize int
	qd        int
	pool      sync.Pool

	mu  sync.Mutex
	all []*uringRingBuf
}

func newURingPool(blockSize, qd int) *uringPool {
	p := &uringPool{blockSize: blockSize, qd: qd}
	p.pool.New = func() any {
		ring, err := uring.New(uint32(qd))
		if err != nil {
			panic(fmt.Errorf("diskio: new ring: %w", err))
		}
		buf, err := unix.Mmap(-1, 0, blockSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			ring.Close()
			panic(fmt.Errorf("diskio: mmap aligned buffer: %w", err))
		}
		rb := &uringRingBuf{ring: ring, buf: buf}
		p.mu.Lock()
		p.all = append(p.all, rb)
		p.mu.Unlock()
		return rb
	}
	return p
}

func (p *uringPool) get() *uringRingBuf   { return p.pool.Get().(*uringRingBuf) }
func (p *uringPool) put(rb *uringRingBuf) { p.pool.Put(rb) }

func (p *uringPool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, rb := range p.all {
		rb.ring.Close()
		unix.Munmap(rb.buf)
	}
	p.all = nil
}
