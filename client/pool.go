package client

import (
	"fmt"
	"sync"
)

// Pool manages a bounded set of Channels to the same service, so
// concurrent callers can parallelize calls without each blocking on a
// single Channel's one-call-at-a-time rule. Adapted from the teacher's
// transport.ConnPool, which pooled raw net.Conns the same way; here the
// pooled unit is a whole Channel (handshake included) since a Channel is
// the spec's unit of at-most-one-call-in-flight.
type Pool struct {
	mu       sync.Mutex
	channels chan *Channel
	maxSize  int
	curSize  int
	factory  func() *Channel
}

// NewPool creates a pool with the given max size. Channels are created
// lazily on first demand, not eagerly at construction.
func NewPool(maxSize int, factory func() *Channel) *Pool {
	return &Pool{
		channels: make(chan *Channel, maxSize),
		maxSize:  maxSize,
		factory:  factory,
	}
}

// Get returns a Channel from the pool, creating one if under maxSize, or
// blocking for a returned Channel if at capacity.
func (p *Pool) Get() (*Channel, error) {
	select {
	case ch := <-p.channels:
		return ch, nil
	default:
	}

	p.mu.Lock()
	if p.curSize < p.maxSize {
		p.curSize++
		p.mu.Unlock()
		return p.factory(), nil
	}
	p.mu.Unlock()

	ch, ok := <-p.channels
	if !ok {
		return nil, fmt.Errorf("client: pool closed")
	}
	return ch, nil
}

// Put returns a Channel to the pool for reuse by the next caller.
func (p *Pool) Put(ch *Channel) {
	p.channels <- ch
}

// Close closes every pooled Channel's connection. Channels currently
// checked out are unaffected until they are next used or returned.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	close(p.channels)
	for ch := range p.channels {
		ch.Close()
		p.curSize--
	}
}
