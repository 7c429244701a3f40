package app

import (
	"context"
	"fmt"

	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/entities"
)

// Loader fetches an entity list together with its reference collections.
type Loader struct {
	gw domain.Gateway
}

func NewLoader(gw domain.Gateway) *Loader { return &Loader{gw: gw} }

func (l *Loader) Load(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope) (entities.Listing, error) {
	return l.load(ctx, sess, ent, entities.Expand(ent.ListPath, sc, 0))
}

// LoadCreateRefs fetches the reference lists the creator needs. Entities
// without a dedicated endpoint reuse their list payload.
func (l *Loader) LoadCreateRefs(ctx context.Context, sess domain.Session, ent *entities.Entity, sc domain.Scope) (map[string][]domain.Option, error) {
	if ent.CreateRefsPath == "" {
		lst, err := l.Load(ctx, sess, ent, sc)
		if err != nil {
			return nil, err
		}
		return lst.Refs, nil
	}
	var payload map[string]any
	if err := l.gw.Fetch(ctx, sess.Token, entities.Expand(ent.CreateRefsPath, sc, 0), &payload); err != nil {
		return nil, fmt.Errorf("load %s refs: %w", ent.Key, err)
	}
	refs := make(map[string][]domain.Option, len(ent.Refs))
	for _, rs := range ent.Refs {
		refs[rs.Name] = entities.Options(payload[rs.Key], rs.Label)
	}
	return refs, nil
}

func (l *Loader) load(ctx context.Context, sess domain.Session, ent *entities.Entity, path string) (entities.Listing, error) {
	var payload any
	if err := l.gw.Fetch(ctx, sess.Token, path, &payload); err != nil {
		return entities.Listing{}, fmt.Errorf("load %s: %w", ent.Key, err)
	}
	return ent.Extract(payload)
}
