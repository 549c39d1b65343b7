// Package inject mutates outgoing AI requests before they reach a model.
// Injectors claim a slot at a priority; for each slot exactly one injector
// runs, so two providers contributing the same kind of context can never
// stack duplicate messages.
package inject

import (
	"context"
	"sort"
	"sync"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// ChatRequest is one outgoing AI request. A nil Messages list means the
// request carries no message list at all; injectors leave such requests
// untouched. An empty non-nil list is a present, injectable list.
type ChatRequest struct {
	Messages []*schema.Message
}

// Clone returns a request whose message list can be appended to without
// aliasing the original.
func (r ChatRequest) Clone() ChatRequest {
	if r.Messages == nil {
		return r
	}
	return ChatRequest{Messages: append([]*schema.Message(nil), r.Messages...)}
}

// Func is one injector. It returns the (possibly rewritten) request.
type Func func(ctx context.Context, req ChatRequest) (ChatRequest, error)

type entry struct {
	slot     string
	priority int
	seq      int
	fn       Func
}

// Chain resolves slot-registered injectors and applies the winners in
// deterministic order: priority descending, registration order on ties.
type Chain struct {
	mu      sync.RWMutex
	entries []entry
	seq     int
	logger  *zap.Logger
}

func NewChain(logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{logger: logger.Named("inject")}
}

// Register claims a slot at a priority. For a contested slot the highest
// priority wins; equal priorities resolve to the later registration. Empty
// slots and nil funcs are dropped.
func (c *Chain) Register(slot string, priority int, fn Func) {
	if slot == "" || fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry{slot: slot, priority: priority, seq: c.seq, fn: fn})
	c.seq++
}

// Apply runs each slot's winning injector over the request. An injector
// error aborts the chain and returns the request as of the last successful
// injector.
func (c *Chain) Apply(ctx context.Context, req ChatRequest) (ChatRequest, error) {
	for _, e := range c.winners() {
		next, err := e.fn(ctx, req)
		if err != nil {
			return req, err
		}
		req = next
	}
	return req, nil
}

// Slots returns the contested-and-resolved slot names in application order.
func (c *Chain) Slots() []string {
	winners := c.winners()
	slots := make([]string, 0, len(winners))
	for _, e := range winners {
		slots = append(slots, e.slot)
	}
	return slots
}

func (c *Chain) winners() []entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bySlot := make(map[string]entry, len(c.entries))
	for _, e := range c.entries {
		if cur, ok := bySlot[e.slot]; ok && e.priority < cur.priority {
			continue
		}
		bySlot[e.slot] = e
	}

	out := make([]entry, 0, len(bySlot))
	for _, e := range bySlot {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority > out[j].priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}
