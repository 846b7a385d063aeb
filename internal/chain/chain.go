// internal/chain/chain.go
//
// Ordered, fault-tolerant transformation chains.
//
// Context
// -------
// A Chain threads one value through an ordered list of items.  Each item
// extracts what it needs from the request and returns a new value.  The
// filter chain (query builders) and the callback chain (model instances)
// are both Chains; only the payload type differs.
//
// Step semantics
// --------------
//   - success            -> the returned value replaces the current one
//   - NoMatch-class error -> the item is skipped, the value is unchanged
//   - any other error    -> Apply stops and returns that error
//
// Items run strictly in insertion order.  Query builders are immutable
// values.  Chains over pointers (callback models) install a copy function
// with WithCopy, so each item works on its own copy.  Either way a skipped
// item leaves no trace and an aborted run returns the caller's original
// input untouched.
//
// Notes
// -----
//   - Add/Clear are setup-time operations.  Apply is safe for concurrent
//     use as long as nobody mutates the chain at the same time.
//   - Every step outcome is counted in metrics.ChainStepsTotal under the
//     chain's name.
package chain

import (
	"slices"

	"go.uber.org/zap"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/metrics"
	"github.com/yanizio/adept-rest/internal/resterr"
)

// Item is one step of a Chain.
type Item[T any] interface {
	Apply(rc *extract.Context, st extract.State, v T) (T, error)
}

// ItemFunc adapts a function to Item.
type ItemFunc[T any] func(rc *extract.Context, st extract.State, v T) (T, error)

func (f ItemFunc[T]) Apply(rc *extract.Context, st extract.State, v T) (T, error) {
	return f(rc, st, v)
}

// Chain is an ordered list of Items over payload T.
type Chain[T any] struct {
	name  string
	items []Item[T]
	copy  func(T) T
}

// New builds a named chain.  The name labels metrics and log lines.
func New[T any](name string, items ...Item[T]) *Chain[T] {
	return &Chain[T]{name: name, items: slices.Clone(items)}
}

func (c *Chain[T]) Name() string { return c.name }

// WithCopy makes Apply hand every item fn(current) instead of current.
// Use it when T is a pointer.
func (c *Chain[T]) WithCopy(fn func(T) T) *Chain[T] {
	c.copy = fn
	return c
}

// Len returns the number of items.  A nil chain has none.
func (c *Chain[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Add appends items and returns c for chaining at setup time.
func (c *Chain[T]) Add(items ...Item[T]) *Chain[T] {
	c.items = append(c.items, items...)
	return c
}

// Clear drops every item.  Apply on an empty chain returns its input.
func (c *Chain[T]) Clear() {
	c.items = nil
}

// Clone returns an independent copy; adding to it never affects c.
func (c *Chain[T]) Clone() *Chain[T] {
	if c == nil {
		return nil
	}
	return &Chain[T]{name: c.name, items: slices.Clone(c.items), copy: c.copy}
}

// Apply runs every item in order.  See the package notes for step
// semantics.  A nil chain is the identity.
func (c *Chain[T]) Apply(rc *extract.Context, st extract.State, v T) (T, error) {
	if c == nil {
		return v, nil
	}
	cur := v
	for i, it := range c.items {
		in := cur
		if c.copy != nil {
			in = c.copy(cur)
		}
		next, err := it.Apply(rc, st, in)
		if err != nil {
			if resterr.IsNoMatch(err) {
				metrics.ChainStepsTotal.WithLabelValues(c.name, metrics.OutcomeSkipped).Inc()
				st.Log().Debug("chain step skipped",
					zap.String("chain", c.name), zap.Int("step", i), zap.Error(err))
				continue
			}
			metrics.ChainStepsTotal.WithLabelValues(c.name, metrics.OutcomeError).Inc()
			return v, err
		}
		metrics.ChainStepsTotal.WithLabelValues(c.name, metrics.OutcomeApplied).Inc()
		cur = next
	}
	return cur, nil
}
