package httpserver

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"gezgi_admin/internal/app"
	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/entities"
	"gezgi_admin/internal/form"
)

type loginView struct {
	Controls []form.Control
	Error    string
}

func (h *Handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	if SessionFrom(r.Context()).Authenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	lv := loginView{Controls: app.LoginForm().Controls(map[string]string{}, nil, nil, nil)}
	h.views.render(w, http.StatusOK, "login", h.page(r, "Login", lv))
}

func (h *Handlers) login(cc CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		token, errs, err := h.Auth.Login(r.Context(), r.PostForm)
		if !errs.Empty() || err != nil {
			lv := loginView{Controls: app.LoginForm().Controls(map[string]string{"username": r.PostForm.Get("username")}, errs, nil, nil)}
			status := http.StatusUnprocessableEntity
			if err != nil {
				lv.Error = plainText(err.Error())
				status = http.StatusUnauthorized
			}
			h.views.render(w, status, "login", h.page(r, "Login", lv))
			return
		}
		setToken(w, cc, token)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

func (h *Handlers) logout(cc CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clearToken(w, cc)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFrom(ctx)
	q := r.URL.Query()

	pg, _ := strconv.Atoi(q.Get("page"))
	if pg < 1 {
		pg = 1
	}
	var f app.TeamFilter
	if sess.Claims.IsAdmin {
		f.GuideID, _ = strconv.ParseInt(q.Get("guide"), 10, 64)
		f.StartDate = q.Get("startDate")
		f.EndDate = q.Get("endDate")
	}

	var tp app.TeamsPage
	var err error
	if f.Active() {
		tp, err = h.Teams.Filter(ctx, sess, f, pg)
	} else {
		tp, err = h.Teams.Main(ctx, sess, pg)
	}
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}

	dv := buildDashboard(tp, f, pg, h.PageSize, sess)
	if f.Active() {
		keep := url.Values{}
		if f.GuideID != 0 {
			keep.Set("guide", strconv.FormatInt(f.GuideID, 10))
		}
		if f.StartDate != "" {
			keep.Set("startDate", f.StartDate)
		}
		if f.EndDate != "" {
			keep.Set("endDate", f.EndDate)
		}
		dv.PageQuery = template.URL("&" + keep.Encode())
	}
	h.views.render(w, http.StatusOK, "dashboard", h.page(r, "Teams", dv))
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, app.SearchPath(r.URL.Query().Get("team")), http.StatusSeeOther)
}

func (h *Handlers) auditPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFrom(ctx)
	if !sess.Claims.IsAdmin {
		h.fail(ctx, sess, entities.Team, domain.ErrReadOnly)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	entries, err := h.Audit.Recent(ctx, 50)
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.views.render(w, http.StatusOK, "audit", h.page(r, "Audit", entries))
}

func (h *Handlers) newTeamPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFrom(ctx)
	if !sess.Claims.IsAdmin {
		h.fail(ctx, sess, entities.Team, domain.ErrReadOnly)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	refs, err := h.Creator.Refs(ctx, sess, entities.Team, domain.Scope{})
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	d, err := h.Creator.Draft(ctx, sess, entities.Team, domain.Scope{})
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	cv := buildCreator(entities.Team, domain.Scope{}, d, refs)
	cv.Actions = "/dashboard/teams"
	cv.Failed = true // nothing else on the page, keep it open
	h.views.render(w, http.StatusOK, "create", h.page(r, "New team", cv))
}

func (h *Handlers) createTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFrom(ctx)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	out, err := h.Creator.Create(ctx, sess, entities.Team, domain.Scope{}, r.PostForm)
	if err != nil {
		h.fail(ctx, sess, entities.Team, err)
	}
	if out.Reload {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard/teams", http.StatusSeeOther)
}

func (h *Handlers) discardTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFrom(ctx)
	if err := h.Creator.Discard(ctx, sess, entities.Team, domain.Scope{}); err != nil {
		h.fail(ctx, sess, entities.Team, err)
	}
	http.Redirect(w, r, "/dashboard/teams", http.StatusSeeOther)
}
