package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gezgi_admin/internal/domain"
)

// ---- fakes ----

type sent struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeGateway serves canned list payloads by path and records mutations.
type fakeGateway struct {
	mu       sync.Mutex
	lists    map[string]any
	sendErr  error
	sendBody string
	sent     []sent
	fetched  []string

	loginToken string
	loginErr   error
}

func (g *fakeGateway) Fetch(ctx context.Context, token, path string, out any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetched = append(g.fetched, path)
	p, ok := g.lists[path]
	if !ok {
		return &domain.APIError{Status: 404, Message: "not found"}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (g *fakeGateway) Send(ctx context.Context, token, method, path string, body any) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := sent{Method: method, Path: path}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		if err := json.Unmarshal(raw, &s.Body); err != nil {
			return "", err
		}
	}
	g.sent = append(g.sent, s)
	if g.sendErr != nil {
		return "", g.sendErr
	}
	return g.sendBody, nil
}

func (g *fakeGateway) Login(ctx context.Context, username, password string) (string, error) {
	return g.loginToken, g.loginErr
}

// memStates round-trips through JSON like the redis store does.
type memStates struct {
	m map[string][]byte
}

func newMemStates() *memStates { return &memStates{m: map[string][]byte{}} }

func (s *memStates) Load(ctx context.Context, ui, list string) (domain.ListState, error) {
	var st domain.ListState
	raw, ok := s.m[ui+"|"+list]
	if !ok {
		return st, nil
	}
	return st, json.Unmarshal(raw, &st)
}

func (s *memStates) Save(ctx context.Context, ui, list string, st domain.ListState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.m[ui+"|"+list] = raw
	return nil
}

func (s *memStates) Clear(ctx context.Context, ui, list string) error {
	delete(s.m, ui+"|"+list)
	return nil
}

type memNotices struct {
	q map[string][]domain.Notice
}

func newMemNotices() *memNotices { return &memNotices{q: map[string][]domain.Notice{}} }

func (n *memNotices) Push(ctx context.Context, ui string, x domain.Notice) error {
	n.q[ui] = append(n.q[ui], x)
	return nil
}

func (n *memNotices) Pop(ctx context.Context, ui string) ([]domain.Notice, error) {
	out := n.q[ui]
	delete(n.q, ui)
	return out, nil
}

type memAudit struct {
	entries []domain.AuditEntry
}

func (a *memAudit) Append(ctx context.Context, e domain.AuditEntry) error {
	a.entries = append(a.entries, e)
	return nil
}

func (a *memAudit) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit > len(a.entries) {
		limit = len(a.entries)
	}
	return a.entries[:limit], nil
}

// ---- fixtures ----

var (
	admin   = domain.Session{Token: "tok", Claims: domain.Claims{ID: 1, Name: "Root", IsAdmin: true}, UI: "ui-1"}
	regular = domain.Session{Token: "tok", Claims: domain.Claims{ID: 2, Name: "Guide"}, UI: "ui-2"}
)

func guidesPayload() map[string]any {
	guide := func(id int, name, email string) map[string]any {
		return map[string]any{
			"id": id, "name": name, "username": fmt.Sprintf("user%d", id),
			"languageId": 1, "language": "English",
			"email": email, "phone": "555",
			"passportNo": "P123456", "nationalityId": 3, "nationality": "TR",
			"birth":    "1990-05-01T00:00:00.000Z",
			"intimate": "Bob", "intimacy": "Brother", "intimatePhone": "556",
			"isAdmin": false,
		}
	}
	return map[string]any{
		"guides": []any{
			guide(7, "Ada", "ada@old.example"),
			guide(8, "Grace", "grace@example.com"),
		},
		"languages":     []any{map[string]any{"id": 1, "language": "English"}, map[string]any{"id": 2, "language": "Turkish"}},
		"nationalities": []any{map[string]any{"id": 3, "nationality": "TR"}},
	}
}

func teamPayload() map[string]any {
	return map[string]any{
		"team": map[string]any{"id": 31, "team": "ABC", "tourId": 2, "tour": "Cappadocia", "guideId": 7, "guide": "Ada",
			"startsAt": "2024-06-01", "endsAt": "2024-06-05"},
		"activities": []any{
			map[string]any{"id": 5, "activity": "Transfer", "activityTime": "2024-06-01T10:00", "airportId": 4, "airport": "IST"},
		},
		"housings":    []any{map[string]any{"id": 9, "housing": "Cave Hotel"}},
		"vehicles":    []any{},
		"restaurants": []any{},
		"airports":    []any{map[string]any{"id": 4, "airport": "IST"}},
		"tours":       []any{map[string]any{"id": 2, "tour": "Cappadocia"}},
		"guides":      []any{map[string]any{"id": 7, "name": "Ada"}},
	}
}
