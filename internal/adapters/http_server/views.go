package httpserver

import (
	"html"
	"html/template"
	"strconv"

	"github.com/microcosm-cc/bluemonday"

	"gezgi_admin/internal/app"
	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/entities"
	"gezgi_admin/internal/form"
)

var plain = bluemonday.StrictPolicy()

// plainText strips markup from server-supplied text. The policy escapes
// what it keeps, and the templates escape again, so the entities are
// turned back into characters here.
func plainText(s string) string {
	return html.UnescapeString(plain.Sanitize(s))
}

// clean strips markup from notices before they are displayed.
func clean(ns []domain.Notice) []domain.Notice {
	for i := range ns {
		ns[i].Title = plainText(ns[i].Title)
		ns[i].Text = plainText(ns[i].Text)
	}
	return ns
}

type navItem struct {
	Href, Label string
}

// page is what the layout template receives.
type page struct {
	Title   string
	Session domain.Session
	Notices []domain.Notice
	Nav     []navItem
	Body    any
}

func nav(s domain.Session) []navItem {
	if !s.Authenticated() {
		return nil
	}
	items := []navItem{{"/dashboard", "Teams"}}
	for _, e := range entities.Dashboard {
		items = append(items, navItem{e.Page, e.Title})
	}
	items = append(items, navItem{"/dashboard/others", "Others"})
	if s.Claims.IsAdmin {
		items = append(items, navItem{"/dashboard/audit", "Audit"})
	}
	return items
}

type fieldView struct {
	Label, Value string
}

type rowView struct {
	ID       int64
	Label    string
	Expanded bool
	Editing  bool
	Fields   []fieldView
	Controls []form.Control
}

type creatorView struct {
	Actions  string
	Singular string
	Controls []form.Control
	// Failed reopens the creator when a previous attempt left a draft.
	Failed bool
}

// listView is one accordion with its optional creator.
type listView struct {
	Title    string
	Singular string
	Actions  string
	CanEdit  bool
	// Single hides the expand toggle for single-record lists.
	Single  bool
	Rows    []rowView
	Creator *creatorView
}

func buildList(ent *entities.Entity, sc domain.Scope, sess domain.Session, lst entities.Listing, st domain.ListState) listView {
	lv := listView{
		Title:    ent.Title,
		Singular: ent.Singular,
		Actions:  entities.Expand(ent.Actions, sc, 0),
		CanEdit:  sess.Authenticated() && (!ent.AdminOnly || sess.Claims.IsAdmin),
		Single:   ent.Shape == entities.Single,
	}
	for _, rec := range lst.Records {
		id := rec.ID()
		rv := rowView{
			ID:       id,
			Label:    ent.Label(rec),
			Expanded: st.Expanded[id] || lv.Single,
			Editing:  lv.CanEdit && st.Editing(id),
		}
		if rv.Editing {
			// the shadow copy, not the list row, is what the form edits
			rv.Controls = ent.Edit.Controls(st.Draft, st.Errors, st.Shadow, lst.Refs)
		} else {
			rv.Fields = display(ent.Edit, rec)
		}
		lv.Rows = append(lv.Rows, rv)
	}
	return lv
}

func buildCreator(ent *entities.Entity, sc domain.Scope, draft domain.ListState, refs map[string][]domain.Option) *creatorView {
	values := draft.Draft
	if values == nil {
		values = map[string]string{}
	}
	return &creatorView{
		Actions:  entities.Expand(ent.Actions, sc, 0),
		Singular: ent.Singular,
		Controls: ent.Create.Controls(values, draft.Errors, nil, refs),
		Failed:   len(draft.Errors) > 0 || len(draft.Draft) > 0,
	}
}

// display renders a record's view-mode fields; selects show their
// denormalized label.
func display(s form.Schema, rec domain.Record) []fieldView {
	out := make([]fieldView, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Secret {
			continue
		}
		v := rec.Str(f.Name)
		switch f.Kind {
		case form.Select:
			v = rec.Str(f.Display)
		case form.Date:
			if len(v) > 10 {
				v = v[:10]
			}
		case form.DateTime:
			if len(v) > 16 {
				v = v[:16]
			}
		case form.Checkbox:
			if v == "" {
				v = "No"
			}
		}
		out = append(out, fieldView{Label: f.Label, Value: v})
	}
	return out
}

type dashboardView struct {
	Teams     []teamRow
	Pages     app.Pagination
	Guides    []form.Choice
	Filter    app.TeamFilter
	Filtering bool
	// PageQuery carries the active filter into pagination links.
	PageQuery template.URL
	CanFilter bool
	CanCreate bool
}

type teamRow struct {
	Team, Tour, Guide, StartsAt, EndsAt string
}

func buildDashboard(tp app.TeamsPage, f app.TeamFilter, page, perPage int, sess domain.Session) dashboardView {
	dv := dashboardView{
		Pages:     app.PageWindow(tp.Total, page, perPage),
		Filter:    f,
		Filtering: f.Active(),
		CanFilter: sess.Claims.IsAdmin,
		CanCreate: sess.Claims.IsAdmin,
	}
	for _, t := range tp.Teams {
		dv.Teams = append(dv.Teams, teamRow{
			Team:     t.Str("team"),
			Tour:     t.Str("tour"),
			Guide:    t.Str("guide"),
			StartsAt: clip10(t.Str("startsAt")),
			EndsAt:   clip10(t.Str("endsAt")),
		})
	}
	sel := ""
	if f.GuideID != 0 {
		sel = strconv.FormatInt(f.GuideID, 10)
	}
	dv.Guides = append(dv.Guides, form.Choice{Value: "", Label: "All guides", Selected: sel == ""})
	for _, g := range tp.Guides {
		v := strconv.FormatInt(g.ID, 10)
		dv.Guides = append(dv.Guides, form.Choice{Value: v, Label: g.Label, Selected: v == sel})
	}
	return dv
}

func clip10(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
