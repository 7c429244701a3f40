package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/entities"
	"gezgi_admin/internal/form"
)

// Outcome tells the caller what to show after an action. Network and
// application failures are not errors here: they become notices and an
// Outcome with Reload false.
type Outcome struct {
	// Invalid means validation failed and nothing was sent.
	Invalid bool
	// Reload means the list must be fetched again.
	Reload bool
	// Navigate overrides the page to go to after the action.
	Navigate string
}

// Accordion implements the list edit protocol for any entity: expand and
// collapse panels, keep at most one row in edit mode, validate and save
// that row, delete behind confirmation.
type Accordion struct {
	loader  *Loader
	gw      domain.Gateway
	states  domain.StateStore
	notices domain.Notices
	audit   domain.AuditLog
}

func NewAccordion(gw domain.Gateway, states domain.StateStore, notices domain.Notices, audit domain.AuditLog) *Accordion {
	return &Accordion{loader: NewLoader(gw), gw: gw, states: states, notices: notices, audit: audit}
}

// State returns the list's current accordion state.
func (a *Accordion) State(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope) (domain.ListState, error) {
	return a.states.Load(ctx, sess.UI, ent.ListKey(sc))
}

func (a *Accordion) Expand(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope, id int64) error {
	return a.update(ctx, sess, ent, sc, func(st *domain.ListState) {
		if st.Expanded == nil {
			st.Expanded = map[int64]bool{}
		}
		st.Expanded[id] = true
	})
}

func (a *Accordion) Collapse(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope, id int64) error {
	return a.update(ctx, sess, ent, sc, func(st *domain.ListState) {
		delete(st.Expanded, id)
	})
}

// BeginEdit puts id in edit mode. Any other row that was being edited
// silently returns to view mode.
func (a *Accordion) BeginEdit(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope, id int64) error {
	if err := gate(sess, ent); err != nil {
		return err
	}
	lst, err := a.loader.Load(ctx, sess, ent, sc)
	if err != nil {
		return err
	}
	rec, ok := lst.Find(id)
	if !ok {
		return fmt.Errorf("%s %d: %w", ent.Key, id, domain.ErrUnknownRecord)
	}
	return a.update(ctx, sess, ent, sc, func(st *domain.ListState) {
		st.Reset()
		st.EditingID = &id
		st.Shadow = rec.Clone()
		st.Draft = ent.Edit.Defaults(rec)
		if st.Expanded == nil {
			st.Expanded = map[int64]bool{}
		}
		st.Expanded[id] = true
	})
}

// CancelEdit discards the shadow copy and validation state. No network call.
func (a *Accordion) CancelEdit(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope) error {
	return a.update(ctx, sess, ent, sc, func(st *domain.ListState) { st.Reset() })
}

// Save validates values against the edit schema, merges the patch over the
// shadow copy and PUTs it. Edit state survives a failed save so the user
// can retry without re-entering data.
func (a *Accordion) Save(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope, values url.Values) (Outcome, error) {
	if err := gate(sess, ent); err != nil {
		return Outcome{}, err
	}
	key := ent.ListKey(sc)
	st, err := a.states.Load(ctx, sess.UI, key)
	if err != nil {
		return Outcome{}, err
	}
	if st.EditingID == nil || st.Shadow == nil {
		return Outcome{}, domain.ErrNotEditing
	}
	id := *st.EditingID

	patch, errs := ent.Edit.Parse(values)
	st.Draft = draft(ent.Edit, values)
	if !errs.Empty() {
		st.Errors = errs
		return Outcome{Invalid: true}, a.states.Save(ctx, sess.UI, key, st)
	}
	st.Errors = nil

	body := st.Shadow.Merge(patch)
	msg, err := a.gw.Send(ctx, sess.Token, http.MethodPut, entities.Expand(ent.UpdatePath, sc, id), body)
	a.record(ctx, sess, ent, &id, "update", err)
	if err != nil {
		log.Warn().Err(err).Str("entity", ent.Key).Int64("id", id).Msg("save failed")
		a.notify(ctx, sess, domain.Notice{Kind: domain.NoticeError, Title: "Error", Text: domain.UserMessage(err)})
		return Outcome{}, a.states.Save(ctx, sess.UI, key, st)
	}

	st.Reset()
	if err := a.states.Save(ctx, sess.UI, key, st); err != nil {
		return Outcome{}, err
	}
	a.notify(ctx, sess, domain.Notice{Kind: domain.NoticeSuccess, Title: "Success!", Text: orDefault(msg, "The "+strings.ToLower(ent.Singular)+" has been updated successfully")})
	return Outcome{Reload: true}, nil
}

// Remove deletes id once the user confirmed. Declining is a no-op. A failed
// delete leaves every piece of state untouched.
func (a *Accordion) Remove(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope, id int64, confirmed bool) (Outcome, error) {
	if !confirmed {
		return Outcome{}, nil
	}
	if err := gate(sess, ent); err != nil {
		return Outcome{}, err
	}
	_, err := a.gw.Send(ctx, sess.Token, http.MethodDelete, entities.Expand(ent.DeletePath, sc, id), nil)
	a.record(ctx, sess, ent, &id, "delete", err)
	if err != nil {
		log.Warn().Err(err).Str("entity", ent.Key).Int64("id", id).Msg("delete failed")
		a.notify(ctx, sess, domain.Notice{Kind: domain.NoticeError, Title: "Error", Text: domain.UserMessage(err)})
		return Outcome{}, nil
	}

	if err := a.update(ctx, sess, ent, sc, func(st *domain.ListState) {
		if st.Editing(id) {
			st.Reset()
		}
		delete(st.Expanded, id)
	}); err != nil {
		return Outcome{}, err
	}
	a.notify(ctx, sess, domain.Notice{Kind: domain.NoticeSuccess, Title: "Success!", Text: ent.Singular + " deleted successfully"})
	out := Outcome{Reload: true}
	if ent.AfterDelete != "" {
		out.Navigate = entities.Expand(ent.AfterDelete, sc, id)
	}
	return out, nil
}

func (a *Accordion) update(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope, fn func(*domain.ListState)) error {
	key := ent.ListKey(sc)
	st, err := a.states.Load(ctx, sess.UI, key)
	if err != nil {
		return err
	}
	fn(&st)
	return a.states.Save(ctx, sess.UI, key, st)
}

func (a *Accordion) notify(ctx context.Context, sess domain.Session, n domain.Notice) {
	if err := a.notices.Push(ctx, sess.UI, n); err != nil {
		log.Error().Err(err).Msg("push notice failed")
	}
}

func (a *Accordion) record(ctx context.Context, sess domain.Session, ent *entities.Entity, id *int64, action string, err error) {
	recordAudit(ctx, a.audit, sess, ent, id, action, err)
}

func recordAudit(ctx context.Context, audit domain.AuditLog, sess domain.Session, ent *entities.Entity, id *int64, action string, err error) {
	if audit == nil {
		return
	}
	e := domain.AuditEntry{Actor: sess.Claims.Name, Entity: ent.Key, RecordID: id, Action: action, Status: http.StatusOK}
	if err != nil {
		var ae *domain.APIError
		if errors.As(err, &ae) {
			e.Status = ae.Status
		} else {
			e.Status = 0
		}
		e.Message = domain.UserMessage(err)
	}
	if aerr := audit.Append(ctx, e); aerr != nil {
		log.Error().Err(aerr).Str("entity", ent.Key).Msg("audit append failed")
	}
}

// gate rejects mutations on admin-only lists from non-admin sessions.
func gate(sess domain.Session, ent *entities.Entity) error {
	if !sess.Authenticated() {
		return domain.ErrUnauthorized
	}
	if ent.AdminOnly && !sess.Claims.IsAdmin {
		return domain.ErrReadOnly
	}
	return nil
}

// draft keeps the submitted raw values of declared, non-secret fields.
func draft(s form.Schema, values url.Values) map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		if f.Secret {
			continue
		}
		out[f.Name] = values.Get(f.Name)
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
