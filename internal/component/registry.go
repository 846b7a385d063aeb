// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  `serve` mounts every
// component's Routes() under "/<name>" and, before mounting, invokes
// Init() when the component implements the Initializer interface.
// `migrate` applies every component's Migrations() in name order.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/pagination"
)

// Env is what the host hands a component: the shared request State and
// the site-wide pagination default built from the `pagination` config block.
type Env struct {
	State     extract.State
	Paginator pagination.Paginator
}

// Initializer is optional.  If a Component implements it, `serve` calls
// Init(env) once before Routes.
type Initializer interface {
	Init(Env) error
}

// Component contract.
//
// Migrations() may return nil if the component has no schema changes.
// Routes() returns the resource router, e.g.:
//
//	res := resource.MustNew[Note]("notes")
//	res.Paginator = env.Paginator
//	return res.Routes(env.State)
type Component interface {
	Name() string
	Routes(Env) chi.Router
	Migrations() []string
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  Registering the
// same name twice panics; it is always a wiring bug.
func Register(c Component) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[c.Name()]; dup {
		panic(fmt.Sprintf("component: %q registered twice", c.Name()))
	}
	registry[c.Name()] = c
}

// All returns every registered component sorted by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Mount initialises every component and mounts it on r under "/<name>".
func Mount(r chi.Router, env Env) error {
	for _, c := range All() {
		if in, ok := c.(Initializer); ok {
			if err := in.Init(env); err != nil {
				return fmt.Errorf("component %s init: %w", c.Name(), err)
			}
		}
		r.Mount("/"+c.Name(), c.Routes(env))
		env.State.Log().Info("component mounted", zap.String("component", c.Name()))
	}
	return nil
}

// reset clears the registry; tests only.
func reset() {
	mu.Lock()
	registry = map[string]Component{}
	mu.Unlock()
}
