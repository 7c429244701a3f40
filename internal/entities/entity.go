// Package entities declares every manageable record type: its endpoints,
// list payload shape, reference collections and form schemas. The accordion
// and creator engines in internal/app are driven entirely by these values.
package entities

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/form"
)

// Shape describes where the records sit in a list payload.
type Shape int

const (
	// Bundle is an object holding the records under ItemsKey next to reference lists.
	Bundle Shape = iota
	// Array is a bare JSON array of records.
	Array
	// Single is an object holding one record under ItemsKey.
	Single
)

// RefSpec maps a reference collection to its bundle key and label field.
type RefSpec struct {
	Name  string
	Key   string
	Label string
}

type Entity struct {
	Key      string
	Title    string
	Singular string

	// Page is where the list is displayed; Actions is the POST base for
	// the accordion and creator. Both accept {team} and {slug}.
	Page    string
	Actions string

	ListPath string
	Shape    Shape
	ItemsKey string
	Refs     []RefSpec
	// CreateRefsPath, when set, is fetched for the creator's reference
	// lists instead of ListPath.
	CreateRefsPath string

	TitleField string
	Edit       form.Schema
	Create     form.Schema

	CreatePath string
	UpdatePath string
	DeletePath string

	// ParentKey/ParentField inject the owning record's id into created
	// records (teamId for activities and tourists).
	ParentKey   string
	ParentField string

	AdminOnly bool
	// AfterDelete is the navigation target after a successful delete;
	// empty means back to Page.
	AfterDelete string
}

var placeholders = []string{"{team}", "{slug}", "{id}"}

// Expand fills a path template from scope and id.
func Expand(tmpl string, sc domain.Scope, id int64) string {
	r := strings.NewReplacer(
		placeholders[0], url.PathEscape(sc.Team),
		placeholders[1], url.PathEscape(sc.Slug),
		placeholders[2], strconv.FormatInt(id, 10),
	)
	return r.Replace(tmpl)
}

// ListKey identifies one list instance for the state store.
func (e *Entity) ListKey(sc domain.Scope) string {
	k := e.Key
	if sc.Slug != "" {
		k += ":" + sc.Slug
	}
	if sc.Team != "" {
		k += ":" + sc.Team
	}
	return k
}

// Label is the accordion trigger text of a record.
func (e *Entity) Label(r domain.Record) string {
	if s := r.Str(e.TitleField); s != "" {
		return s
	}
	return fmt.Sprintf("#%d", r.ID())
}

// Listing is one decoded list payload.
type Listing struct {
	Records []domain.Record
	Refs    map[string][]domain.Option
	// Raw is the undecoded payload, kept for parent lookups.
	Raw any
}

// Find returns the record with id.
func (l Listing) Find(id int64) (domain.Record, bool) {
	for _, r := range l.Records {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// Extract decodes a list payload according to the entity's shape.
func (e *Entity) Extract(payload any) (Listing, error) {
	out := Listing{Raw: payload, Refs: map[string][]domain.Option{}}
	switch e.Shape {
	case Array:
		recs, err := records(payload)
		if err != nil {
			return Listing{}, fmt.Errorf("%s: %w", e.Key, err)
		}
		out.Records = recs
	case Bundle, Single:
		obj, ok := payload.(map[string]any)
		if !ok {
			return Listing{}, fmt.Errorf("%s: expected object payload, got %T", e.Key, payload)
		}
		if e.Shape == Single {
			m, ok := obj[e.ItemsKey].(map[string]any)
			if !ok {
				return Listing{}, fmt.Errorf("%s: %q missing", e.Key, e.ItemsKey)
			}
			out.Records = []domain.Record{m}
		} else {
			recs, err := records(obj[e.ItemsKey])
			if err != nil {
				return Listing{}, fmt.Errorf("%s.%s: %w", e.Key, e.ItemsKey, err)
			}
			out.Records = recs
		}
		for _, rs := range e.Refs {
			out.Refs[rs.Name] = Options(obj[rs.Key], rs.Label)
		}
	}
	return out, nil
}

// ParentID reads the owning record's id from a payload, e.g. team.id.
func (e *Entity) ParentID(payload any) (int64, bool) {
	if e.ParentKey == "" {
		return 0, false
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	m, ok := obj[e.ParentKey].(map[string]any)
	if !ok {
		return 0, false
	}
	id := domain.Record(m).ID()
	return id, id != 0
}

// records accepts a JSON array (or null) of objects.
func records(v any) ([]domain.Record, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]domain.Record, 0, len(arr))
	for _, it := range arr {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, domain.Record(m))
	}
	return out, nil
}

// Options converts a reference array into selectable options.
func Options(v any, label string) []domain.Option {
	recs, _ := records(v)
	out := make([]domain.Option, 0, len(recs))
	for _, r := range recs {
		out = append(out, domain.Option{ID: r.ID(), Label: r.Str(label)})
	}
	return out
}
