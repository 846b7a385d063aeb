// internal/when/dispatch.go
//
// Conditional dispatch: pick the first branch whose predicate matches.
//
// Context
// -------
// A Dispatcher holds ordered (Predicate, V) pairs and an optional fallback.
// Resolve walks the pairs in registration order:
//
//	match              -> that branch wins, nothing after it is evaluated
//	NoMatch            -> next branch
//	hard error         -> Resolve returns it (no fall-through)
//	exhausted          -> fallback if set, else ErrNoMatch
//
// Snapshots
// ---------
// Predicates may consume parts of the context while extracting.  Each one
// runs against rc.Clone(), so a losing predicate's side effects are never
// seen by later predicates or by the chosen view.  The winner's snapshot is
// returned with its branch; the fallback gets the original context.
//
// Notes
// -----
//   - Build at setup time.  Resolve is safe for concurrent use afterwards.
//   - V is usually a view, shared by pointer or interface across tables.
package when

import (
	"go.uber.org/zap"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/metrics"
	"github.com/yanizio/adept-rest/internal/resterr"
)

type branch[V any] struct {
	pred Predicate
	view V
}

// Dispatcher selects a V per request.
type Dispatcher[V any] struct {
	name        string
	branches    []branch[V]
	fallback    V
	hasFallback bool
}

// New returns an empty dispatcher.  name labels metrics and logs.
func New[V any](name string) *Dispatcher[V] {
	return &Dispatcher[V]{name: name}
}

// When appends a branch.
func (d *Dispatcher[V]) When(p Predicate, v V) *Dispatcher[V] {
	d.branches = append(d.branches, branch[V]{pred: p, view: v})
	return d
}

// Fallback sets the view used when no predicate matches.
func (d *Dispatcher[V]) Fallback(v V) *Dispatcher[V] {
	d.fallback, d.hasFallback = v, true
	return d
}

func (d *Dispatcher[V]) Name() string { return d.name }

// Len returns the number of branches, not counting the fallback.
func (d *Dispatcher[V]) Len() int { return len(d.branches) }

// Views returns every branch view in order, then the fallback if set.
func (d *Dispatcher[V]) Views() []V {
	out := make([]V, 0, len(d.branches)+1)
	for _, b := range d.branches {
		out = append(out, b.view)
	}
	if d.hasFallback {
		out = append(out, d.fallback)
	}
	return out
}

// Resolve runs the dispatch.  It returns the chosen view and the context
// that view must be served with.
func (d *Dispatcher[V]) Resolve(rc *extract.Context, st extract.State) (V, *extract.Context, error) {
	var zero V
	for i, b := range d.branches {
		snap := rc.Clone()
		err := b.pred.Check(snap, st)
		if err == nil {
			metrics.DispatchTotal.WithLabelValues(d.name, "branch").Inc()
			st.Log().Debug("dispatch matched", zap.String("dispatcher", d.name), zap.Int("branch", i))
			return b.view, snap, nil
		}
		if !resterr.IsNoMatch(err) {
			metrics.DispatchTotal.WithLabelValues(d.name, "error").Inc()
			return zero, rc, err
		}
	}

	if d.hasFallback {
		metrics.DispatchTotal.WithLabelValues(d.name, "fallback").Inc()
		st.Log().Debug("dispatch fell back", zap.String("dispatcher", d.name))
		return d.fallback, rc, nil
	}
	metrics.DispatchTotal.WithLabelValues(d.name, "nomatch").Inc()
	return zero, rc, resterr.ErrNoMatch
}
