// components/notes/notes.go
//
// Notes component: the reference resource mounted at /notes.
//
// Context
// -------
// Shows every pipeline stage on one model:
//
//   • filters   – ?status= exact match, ?q= title search, ?ordering= with an
//                 allow-list, and a stable default order by id
//   • callbacks – uuid, status default, created/updated stamps on create
//   • paginator – the site-wide policy from the `pagination` config block
//   • when      – crawlers get a trimmed detail view (noteCard), everyone
//                 else the full row
//
// Migrations target MySQL, the default driver.
package notes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/adept-rest/internal/callback"
	"github.com/yanizio/adept-rest/internal/component"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/filter"
	"github.com/yanizio/adept-rest/internal/query"
	"github.com/yanizio/adept-rest/internal/resource"
	"github.com/yanizio/adept-rest/internal/when"
)

// Note is one row of the notes table.
type Note struct {
	ID        int64     `db:"id"         json:"id"         rest:"pk,auto"`
	UUID      string    `db:"uuid"       json:"uuid"       rest:"type=char"`
	Title     string    `db:"title"      json:"title"      validate:"required,max=200"`
	Body      string    `db:"body"       json:"body"       rest:"type=text"`
	Status    string    `db:"status"     json:"status"     validate:"oneof=draft published archived"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (Note) TableName() string { return "notes" }

// noteCard is the crawler-facing projection of the same table.
type noteCard struct {
	ID    int64  `db:"id"    json:"id"    rest:"pk,auto"`
	Title string `db:"title" json:"title"`
}

func (noteCard) TableName() string { return "notes" }

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp implements component.Component.
type Comp struct {
	notes *resource.Resource[Note]
	cards *resource.Resource[noteCard]
}

func init() { component.Register(&Comp{}) }

func (c *Comp) Name() string { return "notes" }

func (c *Comp) Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS notes (
			id         BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
			uuid       CHAR(36)     NOT NULL,
			title      VARCHAR(200) NOT NULL,
			body       TEXT         NOT NULL,
			status     VARCHAR(16)  NOT NULL DEFAULT 'draft',
			created_at DATETIME     NOT NULL,
			updated_at DATETIME     NOT NULL,
			UNIQUE KEY notes_uuid (uuid)
		)`,
		`CREATE INDEX notes_status ON notes (status)`,
	}
}

// Init builds both resources against the site-wide paginator.
func (c *Comp) Init(env component.Env) error {
	notes, err := resource.New[Note]("notes")
	if err != nil {
		return err
	}
	notes.Paginator = env.Paginator
	notes.Filters.
		Add(filter.Eq[query.Select]("status", extract.QueryValue("status"))).
		Add(filter.Contains[query.Select]("title", extract.QueryValue("q"))).
		Add(filter.Ordering[query.Select]("ordering", "id", "title", "created_at", "updated_at")).
		Add(filter.OrderBy[query.Select]("id"))
	notes.Callbacks.
		Add(callback.NewUUID[*Note]("uuid")).
		Add(callback.Default[*Note]("status", "draft")).
		Add(callback.Touch[*Note]("created_at", "updated_at"))

	cards, err := resource.New[noteCard]("notes")
	if err != nil {
		return err
	}
	cards.Filters.Add(filter.Eq[query.Select]("status", extract.Value("published")))

	c.notes, c.cards = notes, cards
	return nil
}

func (c *Comp) Routes(env component.Env) chi.Router {
	if c.notes == nil {
		if err := c.Init(env); err != nil {
			panic(err)
		}
	}
	vs := c.notes.Views()
	full := vs.Detail
	vs.Detail = resource.When("detail",
		when.New[resource.View]("notes-detail").
			When(when.IsBot(), &resource.DetailView[noteCard]{R: c.cards}).
			Fallback(full))
	return vs.Routes(c.notes.Name, env.State)
}
