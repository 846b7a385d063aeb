package resource

import (
	"github.com/go-chi/chi/v5"

	"github.com/yanizio/adept-rest/internal/extract"
)

// Views returns the default view set.  Replace fields on the result to
// customise individual endpoints before calling Mount.
func (r *Resource[M]) Views() ViewSet {
	return ViewSet{
		List:   &ListView[M]{R: r},
		Create: &CreateView[M]{R: r},
		Detail: &DetailView[M]{R: r},
		Delete: &DeleteView[M]{R: r},
	}
}

// Routes mounts the default view set.
func (r *Resource[M]) Routes(st extract.State) chi.Router {
	return r.Views().Routes(r.Name, st)
}

// ViewSet maps the four endpoints to views.  A nil view leaves its route
// unmounted (chi answers 405 or 404).
type ViewSet struct {
	List   View
	Create View
	Detail View
	Delete View
}

// Routes builds
//
//	GET    /       List
//	POST   /       Create
//	GET    /{pk}   Detail
//	DELETE /{pk}   Delete
func (vs ViewSet) Routes(resourceName string, st extract.State) chi.Router {
	r := chi.NewRouter()
	if vs.List != nil {
		r.Method("GET", "/", Handler(resourceName, vs.List, st))
	}
	if vs.Create != nil {
		r.Method("POST", "/", Handler(resourceName, vs.Create, st))
	}
	if vs.Detail != nil {
		r.Method("GET", "/{"+PKParam+"}", Handler(resourceName, vs.Detail, st))
	}
	if vs.Delete != nil {
		r.Method("DELETE", "/{"+PKParam+"}", Handler(resourceName, vs.Delete, st))
	}
	return r
}
