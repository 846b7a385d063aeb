package resource

import (
	"net/http"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/when"
)

// WhenView picks one of several views per request.  The chosen view is
// served with the context snapshot its predicate produced.
//
//	v := resource.When("notes-list",
//		when.New[resource.View]("notes-list").
//			When(when.QueryPresent("brief"), briefList).
//			Fallback(fullList))
type WhenView struct {
	name string
	D    *when.Dispatcher[View]
}

// When wraps a dispatcher as a View.
func When(name string, d *when.Dispatcher[View]) *WhenView {
	return &WhenView{name: name, D: d}
}

func (v *WhenView) Name() string {
	if v.name == "" {
		return "when"
	}
	return v.name
}

func (v *WhenView) Serve(w http.ResponseWriter, rc *extract.Context, st extract.State) error {
	view, snap, err := v.D.Resolve(rc, st)
	if err != nil {
		return err
	}
	return view.Serve(w, snap, st)
}
