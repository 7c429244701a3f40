package app

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/entities"
)

// TeamsPage is one page of the teams dashboard.
type TeamsPage struct {
	Teams  []domain.Record
	Guides []domain.Option
	Total  int
}

// TeamFilter narrows the dashboard to one guide and/or a date range.
type TeamFilter struct {
	GuideID   int64
	StartDate string
	EndDate   string
}

func (f TeamFilter) Active() bool {
	return f.GuideID != 0 || f.StartDate != "" || f.EndDate != ""
}

func (f TeamFilter) query(page int) url.Values {
	q := url.Values{}
	if f.GuideID != 0 {
		q.Set("guide", strconv.FormatInt(f.GuideID, 10))
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	q.Set("page", strconv.Itoa(page))
	return q
}

type Teams struct {
	gw domain.Gateway
}

func NewTeams(gw domain.Gateway) *Teams { return &Teams{gw: gw} }

// Main loads a page of the unfiltered dashboard.
func (t *Teams) Main(ctx context.Context, sess domain.Session, page int) (TeamsPage, error) {
	var payload map[string]any
	if err := t.gw.Fetch(ctx, sess.Token, "/main?page="+strconv.Itoa(max(page, 1)), &payload); err != nil {
		return TeamsPage{}, fmt.Errorf("load teams: %w", err)
	}
	return decodeTeams(payload)
}

// Filter loads a page of teams matching f. The guide list for the filter
// form is taken from an unfiltered first page when the response omits it.
func (t *Teams) Filter(ctx context.Context, sess domain.Session, f TeamFilter, page int) (TeamsPage, error) {
	var payload map[string]any
	if err := t.gw.Fetch(ctx, sess.Token, "/filter?"+f.query(max(page, 1)).Encode(), &payload); err != nil {
		return TeamsPage{}, fmt.Errorf("filter teams: %w", err)
	}
	out, err := decodeTeams(payload)
	if err != nil {
		return TeamsPage{}, err
	}
	if len(out.Guides) == 0 {
		if main, err := t.Main(ctx, sess, 1); err == nil {
			out.Guides = main.Guides
		}
	}
	return out, nil
}

// SearchPath is where the team search box navigates. Team codes are
// upper case.
func SearchPath(query string) string {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return "/dashboard"
	}
	return "/team/" + url.PathEscape(q)
}

func decodeTeams(payload map[string]any) (TeamsPage, error) {
	if payload == nil {
		return TeamsPage{}, fmt.Errorf("teams: empty payload")
	}
	var out TeamsPage
	ls, err := (&entities.Entity{Key: "teams", Shape: entities.Bundle, ItemsKey: "teams"}).Extract(payload)
	if err != nil {
		return TeamsPage{}, err
	}
	out.Teams = ls.Records
	out.Guides = entities.Options(payload["guides"], "guide")
	// /main wraps the count as {count: n}; /filter returns a bare number.
	switch v := payload["totalCount"].(type) {
	case map[string]any:
		n, _ := domain.Record(v).Int("count")
		out.Total = int(n)
	default:
		n, _ := domain.Record{"n": v}.Int("n")
		out.Total = int(n)
	}
	return out, nil
}
