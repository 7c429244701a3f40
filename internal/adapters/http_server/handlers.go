// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"gezgi_admin/internal/app"
	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/entities"
)

type Handlers struct {
	Accordion *app.Accordion
	Creator   *app.Creator
	Loader    *app.Loader
	Auth      *app.Auth
	Teams     *app.Teams
	Notices   domain.Notices
	Audit     domain.AuditLog
	PageSize  int

	views views
}

func (s *Server) MountHandlers(h *Handlers) {
	h.views = loadViews()
	if h.PageSize <= 0 {
		h.PageSize = 5
	}

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Group(func(r chi.Router) {
		r.Use(NoStore)

		r.Get("/", h.loginPage)
		r.Post("/login", h.login(s.cookie))
		r.Post("/logout", h.logout(s.cookie))

		// team pages are readable without a session; mutations are gated
		r.Get("/team/{team}", h.teamPage)
		h.mountEntity(r, entities.Team, nil, false)
		h.mountEntity(r, entities.Activities, nil, true)
		h.mountEntity(r, entities.Tourists, h.listPage(entities.Tourists), true)

		r.Group(func(r chi.Router) {
			r.Use(RequireToken)

			r.Get("/dashboard", h.dashboard)
			r.Get("/dashboard/search", h.search)
			r.Get("/dashboard/audit", h.auditPage)
			r.Get("/dashboard/teams", h.newTeamPage)
			r.Post("/dashboard/teams/new", h.createTeam)
			r.Post("/dashboard/teams/new/discard", h.discardTeam)

			for _, ent := range entities.Dashboard {
				h.mountEntity(r, ent, h.listPage(ent), true)
			}

			r.Get("/dashboard/others", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/dashboard/others/"+entities.OtherSlugs[0], http.StatusSeeOther)
			})
			r.Group(func(r chi.Router) {
				r.Use(knownSlug)
				h.mountEntity(r, entities.Other, h.listPage(entities.Other), true)
			})
		})
	})
}

// knownSlug rejects reference tables that do not exist.
func knownSlug(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !entities.KnownSlug(chi.URLParam(r, "slug")) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func scopeOf(r *http.Request) domain.Scope {
	return domain.Scope{Team: chi.URLParam(r, "team"), Slug: chi.URLParam(r, "slug")}
}

// mountEntity wires the accordion protocol for ent under its Actions path.
// Every POST ends in a redirect back to the page showing the list.
func (h *Handlers) mountEntity(r chi.Router, ent *entities.Entity, show http.HandlerFunc, creatable bool) {
	r.Route(ent.Actions, func(r chi.Router) {
		if show != nil {
			r.Get("/", show)
		}
		r.Post("/expand/{id}", h.withID(ent, func(r *http.Request, sess domain.Session, sc domain.Scope, id int64) (app.Outcome, error) {
			return app.Outcome{}, h.Accordion.Expand(r.Context(), sess, ent, sc, id)
		}))
		r.Post("/collapse/{id}", h.withID(ent, func(r *http.Request, sess domain.Session, sc domain.Scope, id int64) (app.Outcome, error) {
			return app.Outcome{}, h.Accordion.Collapse(r.Context(), sess, ent, sc, id)
		}))
		r.Post("/edit/{id}", h.withID(ent, func(r *http.Request, sess domain.Session, sc domain.Scope, id int64) (app.Outcome, error) {
			return app.Outcome{}, h.Accordion.BeginEdit(r.Context(), sess, ent, sc, id)
		}))
		r.Post("/cancel", h.act(ent, func(r *http.Request, sess domain.Session, sc domain.Scope) (app.Outcome, error) {
			return app.Outcome{}, h.Accordion.CancelEdit(r.Context(), sess, ent, sc)
		}))
		r.Post("/save", h.act(ent, func(r *http.Request, sess domain.Session, sc domain.Scope) (app.Outcome, error) {
			return h.Accordion.Save(r.Context(), sess, ent, sc, r.PostForm)
		}))
		r.Get("/delete/{id}", h.confirmDelete(ent))
		r.Post("/delete/{id}", h.withID(ent, func(r *http.Request, sess domain.Session, sc domain.Scope, id int64) (app.Outcome, error) {
			return h.Accordion.Remove(r.Context(), sess, ent, sc, id, r.PostFormValue("confirm") == "yes")
		}))
		if creatable {
			r.Post("/new", h.act(ent, func(r *http.Request, sess domain.Session, sc domain.Scope) (app.Outcome, error) {
				return h.Creator.Create(r.Context(), sess, ent, sc, r.PostForm)
			}))
			r.Post("/new/discard", h.act(ent, func(r *http.Request, sess domain.Session, sc domain.Scope) (app.Outcome, error) {
				return app.Outcome{}, h.Creator.Discard(r.Context(), sess, ent, sc)
			}))
		}
	})
}

type action func(r *http.Request, sess domain.Session, sc domain.Scope) (app.Outcome, error)

// act runs fn and redirects. Failures become notices; nothing is rendered
// from a POST.
func (h *Handlers) act(ent *entities.Entity, fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		sess := SessionFrom(r.Context())
		sc := scopeOf(r)
		out, err := fn(r, sess, sc)
		if err != nil {
			h.fail(r.Context(), sess, ent, err)
		}
		target := entities.Expand(ent.Page, sc, 0)
		if out.Navigate != "" {
			target = out.Navigate
		} else if id := chi.URLParam(r, "id"); id != "" && !out.Reload {
			target += "#row-" + id
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func (h *Handlers) withID(ent *entities.Entity, fn func(r *http.Request, sess domain.Session, sc domain.Scope, id int64) (app.Outcome, error)) http.HandlerFunc {
	return h.act(ent, func(r *http.Request, sess domain.Session, sc domain.Scope) (app.Outcome, error) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			return app.Outcome{}, domain.ErrUnknownRecord
		}
		return fn(r, sess, sc, id)
	})
}

// fail reports err to the user as a notice.
func (h *Handlers) fail(ctx context.Context, sess domain.Session, ent *entities.Entity, err error) {
	log.Warn().Err(err).Str("entity", ent.Key).Msg("action failed")
	if perr := h.Notices.Push(ctx, sess.UI, domain.Notice{Kind: domain.NoticeError, Title: "Error", Text: failureText(err)}); perr != nil {
		log.Error().Err(perr).Msg("push notice failed")
	}
}

func failureText(err error) string {
	switch {
	case errors.Is(err, domain.ErrReadOnly):
		return "Only managers can change this list."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Please log in to make changes."
	case errors.Is(err, domain.ErrNotEditing):
		return "Nothing is being edited."
	case errors.Is(err, domain.ErrUnknownRecord):
		return "This record no longer exists."
	}
	return domain.UserMessage(err)
}

func (h *Handlers) notices(ctx context.Context, sess domain.Session) []domain.Notice {
	ns, err := h.Notices.Pop(ctx, sess.UI)
	if err != nil {
		log.Error().Err(err).Msg("pop notices failed")
		return nil
	}
	return clean(ns)
}

func (h *Handlers) page(r *http.Request, title string, body any) page {
	sess := SessionFrom(r.Context())
	return page{Title: title, Session: sess, Notices: h.notices(r.Context(), sess), Nav: nav(sess), Body: body}
}

// loadFailed renders the not-found page for a missing list and a generic
// error page for everything else.
func (h *Handlers) loadFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		h.views.render(w, http.StatusNotFound, "error", h.page(r, "Not found", "The page you are looking for does not exist."))
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("load failed")
	h.views.render(w, http.StatusBadGateway, "error", h.page(r, "Something went wrong", domain.UserMessage(err)))
}

type listPage struct {
	Heading string
	Tabs    []navItem
	Lists   []listView
}

func (h *Handlers) listPage(ent *entities.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := SessionFrom(ctx)
		sc := scopeOf(r)

		lst, err := h.Loader.Load(ctx, sess, ent, sc)
		if err != nil {
			h.loadFailed(w, r, err)
			return
		}
		lv, err := h.listView(ctx, sess, ent, sc, lst)
		if err != nil {
			h.loadFailed(w, r, err)
			return
		}

		body := listPage{Heading: ent.Title, Lists: []listView{lv}}
		switch {
		case ent == entities.Other:
			body.Heading = sc.Slug
			for _, s := range entities.OtherSlugs {
				body.Tabs = append(body.Tabs, navItem{Href: "/dashboard/others/" + s, Label: s})
			}
		case sc.Team != "":
			body.Heading = ent.Title + " of " + sc.Team
			body.Tabs = teamTabs(sc)
		}
		h.views.render(w, http.StatusOK, "list", h.page(r, body.Heading, body))
	}
}

// listView combines the fetched list with the caller's accordion state and
// creator draft.
func (h *Handlers) listView(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope, lst entities.Listing) (listView, error) {
	st, err := h.Accordion.State(ctx, sess, ent, sc)
	if err != nil {
		return listView{}, err
	}
	lv := buildList(ent, sc, sess, lst, st)
	if lv.CanEdit && ent.CreatePath != "" && ent.CreateRefsPath == "" {
		d, err := h.Creator.Draft(ctx, sess, ent, sc)
		if err != nil {
			return listView{}, err
		}
		lv.Creator = buildCreator(ent, sc, d, lst.Refs)
	}
	return lv, nil
}

func teamTabs(sc domain.Scope) []navItem {
	return []navItem{
		{Href: entities.Expand(entities.Team.Page, sc, 0), Label: "Details"},
		{Href: entities.Expand(entities.Tourists.Page, sc, 0), Label: "Tourists"},
	}
}

// teamPage shows the team record and its activities from one fetch.
func (h *Handlers) teamPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFrom(ctx)
	sc := scopeOf(r)

	lst, err := h.Loader.Load(ctx, sess, entities.Team, sc)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	acts, err := entities.Activities.Extract(lst.Raw)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	teamView, err := h.listView(ctx, sess, entities.Team, sc, lst)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	actView, err := h.listView(ctx, sess, entities.Activities, sc, acts)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	body := listPage{Heading: "Team " + sc.Team, Tabs: teamTabs(sc), Lists: []listView{teamView, actView}}
	h.views.render(w, http.StatusOK, "list", h.page(r, body.Heading, body))
}

type confirmView struct {
	Label  string
	Action string
}

func (h *Handlers) confirmDelete(ent *entities.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := SessionFrom(ctx)
		sc := scopeOf(r)
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		label := ent.Singular + " #" + strconv.FormatInt(id, 10)
		if lst, err := h.Loader.Load(ctx, sess, ent, sc); err == nil {
			if rec, ok := lst.Find(id); ok {
				label = ent.Label(rec)
			}
		}
		cv := confirmView{Label: label, Action: entities.Expand(ent.Actions, sc, id) + "/delete/" + strconv.FormatInt(id, 10)}
		h.views.render(w, http.StatusOK, "confirm", h.page(r, "Delete "+label, cv))
	}
}
