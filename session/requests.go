package session

import (
	"sync"

	"github.com/srsradio/client/srsmsg"
)

// pendingRequests correlates outbound requests with their replies by
// MessageType alone -- deliberately coarse-grained, matching the reference
// client's per-type list of pending futures. register may be
// called more than once for the same type before a reply arrives; every
// registered waiter receives a copy of the next matching Envelope.
type pendingRequests struct {
	mu      sync.Mutex
	waiters map[srsmsg.MessageType][]chan srsmsg.Envelope
}

func (p *pendingRequests) init() {
	p.waiters = make(map[srsmsg.MessageType][]chan srsmsg.Envelope)
}

// register returns a channel that receives the next Envelope of type t.
// The channel is closed after delivering it, so callers must not keep
// reading from it past the first receive.
func (p *pendingRequests) register(t srsmsg.MessageType) <-chan srsmsg.Envelope {
	ch := make(chan srsmsg.Envelope, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.waiters[t] = append(p.waiters[t], ch)

	return ch
}

// complete delivers env to every registered waiter of its type and clears
// them. It is the pump's job to call this for every inbound message,
// regardless of whether anyone is waiting.
func (p *pendingRequests) complete(env srsmsg.Envelope) {
	p.mu.Lock()
	waiters := p.waiters[env.MsgType]
	delete(p.waiters, env.MsgType)
	p.mu.Unlock()

	for _, ch := range waiters {
		ch <- env
		close(ch)
	}
}
