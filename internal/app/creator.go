package app

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/entities"
)

// Creator validates and posts new records. Its draft lives next to the
// list's accordion state under a separate key, so a failed create keeps
// what the user typed.
type Creator struct {
	loader  *Loader
	gw      domain.Gateway
	states  domain.StateStore
	notices domain.Notices
	audit   domain.AuditLog
}

func NewCreator(gw domain.Gateway, states domain.StateStore, notices domain.Notices, audit domain.AuditLog) *Creator {
	return &Creator{loader: NewLoader(gw), gw: gw, states: states, notices: notices, audit: audit}
}

func createKey(ent *entities.Entity, sc domain.Scope) string { return ent.ListKey(sc) + ":new" }

// Draft returns the creator's last submitted values and errors.
func (c *Creator) Draft(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope) (domain.ListState, error) {
	return c.states.Load(ctx, sess.UI, createKey(ent, sc))
}

// Refs returns the reference lists for the creator's selects.
func (c *Creator) Refs(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope) (map[string][]domain.Option, error) {
	return c.loader.LoadCreateRefs(ctx, sess, ent, sc)
}

// Create validates values against the create schema and POSTs them. For
// records owned by a team the team id is read from the list payload.
func (c *Creator) Create(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope, values url.Values) (Outcome, error) {
	if err := gate(sess, ent); err != nil {
		return Outcome{}, err
	}
	key := createKey(ent, sc)
	var st domain.ListState

	patch, errs := ent.Create.Parse(values)
	st.Draft = draft(ent.Create, values)
	if !errs.Empty() {
		st.Errors = errs
		return Outcome{Invalid: true}, c.states.Save(ctx, sess.UI, key, st)
	}

	body := map[string]any(patch)
	if ent.ParentField != "" {
		// the draft survives a failed parent lookup
		lst, err := c.loader.Load(ctx, sess, ent, sc)
		if err != nil {
			return Outcome{}, errors.Join(err, c.states.Save(ctx, sess.UI, key, st))
		}
		pid, ok := ent.ParentID(lst.Raw)
		if !ok {
			return Outcome{}, errors.Join(domain.ErrNotFound, c.states.Save(ctx, sess.UI, key, st))
		}
		body[ent.ParentField] = pid
	}

	msg, err := c.gw.Send(ctx, sess.Token, http.MethodPost, entities.Expand(ent.CreatePath, sc, 0), body)
	recordAudit(ctx, c.audit, sess, ent, nil, "create", err)
	if err != nil {
		log.Warn().Err(err).Str("entity", ent.Key).Msg("create failed")
		c.notify(ctx, sess, domain.Notice{Kind: domain.NoticeError, Title: "Error", Text: domain.UserMessage(err)})
		return Outcome{}, c.states.Save(ctx, sess.UI, key, st)
	}

	if err := c.states.Clear(ctx, sess.UI, key); err != nil {
		return Outcome{}, err
	}
	c.notify(ctx, sess, domain.Notice{Kind: domain.NoticeSuccess, Title: "Success!", Text: orDefault(msg, "The "+strings.ToLower(ent.Singular)+" has been created successfully")})
	return Outcome{Reload: true}, nil
}

// Discard drops the creator's draft.
func (c *Creator) Discard(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope) error {
	return c.states.Clear(ctx, sess.UI, createKey(ent, sc))
}

func (c *Creator) notify(ctx context.Context, sess domain.Session, n domain.Notice) {
	if err := c.notices.Push(ctx, sess.UI, n); err != nil {
		log.Error().Err(err).Msg("push notice failed")
	}
}
