// Package bufpool pools the receive buffers internal/connserver reads
// connections into before handing them to an httpcore.Parser. Every
// buffer it returns carries Padding bytes of writable post-padding past
// the requested size, satisfying the sentinel and in-place
// body-emission contract Parser.Consume requires.
package bufpool

import "sync"

// Padding is the post-padding every pooled buffer carries past its
// logical size: 2 sentinel bytes for the head scanner plus 32 bytes of
// spare room for in-place body emission past a chunk boundary.
const Padding = 34

// Size classes, chosen around typical socket read sizes: small
// keep-alive requests, a generous default, and large pipelined or
// header-heavy reads.
const (
	Size4KB  = 4 * 1024
	Size16KB = 16 * 1024
	Size64KB = 64 * 1024
)

type sizedPool struct {
	size int
	pool sync.Pool
}

func newSizedPool(size int) *sizedPool {
	sp := &sizedPool{size: size}
	sp.pool.New = func() any {
		buf := make([]byte, size+Padding)
		return &buf
	}
	return sp
}

func (sp *sizedPool) get() []byte {
	return *(sp.pool.Get().(*[]byte))
}

func (sp *sizedPool) put(buf []byte) {
	if cap(buf) < sp.size+Padding {
		return
	}
	buf = buf[:sp.size+Padding]
	sp.pool.Put(&buf)
}

// Pool is a size-classed pool of padded receive buffers.
type Pool struct {
	p4  *sizedPool
	p16 *sizedPool
	p64 *sizedPool
}

// New returns a ready-to-use Pool.
func New() *Pool {
	return &Pool{
		p4:  newSizedPool(Size4KB),
		p16: newSizedPool(Size16KB),
		p64: newSizedPool(Size64KB),
	}
}

// Get returns a buffer whose usable region (buf[:n] for n up to the
// buffer's size class) is followed by Padding bytes of writable
// post-padding. Buffers larger than the biggest size class are
// allocated directly and not pooled.
func (p *Pool) Get(size int) []byte {
	switch {
	case size <= Size4KB:
		return p.p4.get()
	case size <= Size16KB:
		return p.p16.get()
	case size <= Size64KB:
		return p.p64.get()
	default:
		return make([]byte, size+Padding)
	}
}

// Put returns buf to the size-class pool whose padded capacity equals
// cap(buf). Buffers of any other capacity, including the oversize ones
// Get allocates directly, are silently discarded rather than pooled.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	switch cap(buf) {
	case Size4KB + Padding:
		p.p4.put(buf)
	case Size16KB + Padding:
		p.p16.put(buf)
	case Size64KB + Padding:
		p.p64.put(buf)
	}
}
