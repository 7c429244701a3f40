package app_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gezgi_admin/internal/app"
	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/entities"
)

func newCreator() (*app.Creator, *fakeGateway, *memNotices) {
	gw := &fakeGateway{lists: map[string]any{
		"/teams/ABC": teamPayload(),
		"/admin/team": map[string]any{
			"tours":    []any{map[string]any{"id": 2, "tour": "Cappadocia"}},
			"guides":   []any{map[string]any{"id": 7, "name": "Ada"}},
			"airports": []any{map[string]any{"id": 4, "airport": "IST"}},
		},
	}}
	nt := newMemNotices()
	return app.NewCreator(gw, newMemStates(), nt, &memAudit{}), gw, nt
}

func TestCreate_InjectsParentID(t *testing.T) {
	cr, gw, nt := newCreator()
	ctx := context.Background()
	sc := domain.Scope{Team: "ABC"}

	out, err := cr.Create(ctx, admin, entities.Activities, sc, url.Values{
		"activity": {"Dinner"}, "activityTime": {"2024-06-02T19:00"}, "restaurantId": {"12"},
	})
	require.NoError(t, err)
	assert.True(t, out.Reload)

	require.Len(t, gw.sent, 1)
	assert.Equal(t, http.MethodPost, gw.sent[0].Method)
	assert.Equal(t, "/post/activity", gw.sent[0].Path)
	assert.Equal(t, float64(31), gw.sent[0].Body["teamId"])
	assert.Equal(t, float64(12), gw.sent[0].Body["restaurantId"])

	notes, _ := nt.Pop(ctx, admin.UI)
	require.Len(t, notes, 1)
	assert.Equal(t, "The activity has been created successfully", notes[0].Text)
}

func TestCreate_ActivityNeedsOnePlace(t *testing.T) {
	cr, gw, _ := newCreator()
	ctx := context.Background()
	sc := domain.Scope{Team: "ABC"}

	out, err := cr.Create(ctx, admin, entities.Activities, sc, url.Values{
		"activity": {"Dinner"}, "activityTime": {"2024-06-02T19:00"},
	})
	require.NoError(t, err)
	assert.True(t, out.Invalid)
	assert.Empty(t, gw.sent)

	d, err := cr.Draft(ctx, admin, entities.Activities, sc)
	require.NoError(t, err)
	assert.Equal(t, "Only one of hotel, airport, company of vehicle, or restaurant must be provided.", d.Errors["airportId"])
	assert.Equal(t, "Dinner", d.Draft["activity"])
}

func TestCreate_FailureKeepsDraft(t *testing.T) {
	cr, gw, nt := newCreator()
	gw.sendErr = &domain.APIError{Status: 400, Message: "Tour already exists"}
	ctx := context.Background()

	out, err := cr.Create(ctx, admin, entities.Tours, domain.Scope{}, url.Values{
		"tour": {"Ephesus"}, "cityId": {"3"}, "numberOfDays": {"2"}, "numberOfNights": {"1"},
	})
	require.NoError(t, err)
	assert.False(t, out.Reload)

	notes, _ := nt.Pop(ctx, admin.UI)
	require.Len(t, notes, 1)
	assert.Equal(t, "Tour already exists", notes[0].Text)

	d, _ := cr.Draft(ctx, admin, entities.Tours, domain.Scope{})
	assert.Equal(t, "Ephesus", d.Draft["tour"])
	assert.Empty(t, d.Errors)
}

func TestCreate_SuccessClearsDraft(t *testing.T) {
	cr, gw, _ := newCreator()
	ctx := context.Background()
	sc := domain.Scope{Slug: "languages"}

	_, err := cr.Create(ctx, admin, entities.Other, sc, url.Values{"value": {""}})
	require.NoError(t, err)
	d, _ := cr.Draft(ctx, admin, entities.Other, sc)
	assert.Equal(t, "Value is required.", d.Errors["value"])

	out, err := cr.Create(ctx, admin, entities.Other, sc, url.Values{"value": {"German"}})
	require.NoError(t, err)
	assert.True(t, out.Reload)
	require.Len(t, gw.sent, 1)
	assert.Equal(t, "/post/languages", gw.sent[0].Path)
	assert.Equal(t, "German", gw.sent[0].Body["value"])

	d, _ = cr.Draft(ctx, admin, entities.Other, sc)
	assert.Empty(t, d.Draft)
	assert.Empty(t, d.Errors)
}

func TestCreate_RegularSessionCannotCreateTeams(t *testing.T) {
	cr, gw, _ := newCreator()
	_, err := cr.Create(context.Background(), regular, entities.Team, domain.Scope{}, url.Values{})
	assert.ErrorIs(t, err, domain.ErrReadOnly)
	assert.Empty(t, gw.sent)
}

func TestRefs_TeamUsesDedicatedEndpoint(t *testing.T) {
	cr, gw, _ := newCreator()
	refs, err := cr.Refs(context.Background(), admin, entities.Team, domain.Scope{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Option{{ID: 2, Label: "Cappadocia"}}, refs["tours"])
	assert.Equal(t, []domain.Option{{ID: 4, Label: "IST"}}, refs["airports"])
	assert.Equal(t, []string{"/admin/team"}, gw.fetched)
}

func TestCreate_ParentLookupFailureKeepsDraft(t *testing.T) {
	cr, gw, _ := newCreator()
	ctx := context.Background()
	values := url.Values{"activity": {"Dinner"}, "activityTime": {"2024-06-02T19:00"}, "restaurantId": {"12"}}

	// team list gone
	_, err := cr.Create(ctx, admin, entities.Activities, domain.Scope{Team: "XYZ"}, values)
	require.Error(t, err)
	d, _ := cr.Draft(ctx, admin, entities.Activities, domain.Scope{Team: "XYZ"})
	assert.Equal(t, "Dinner", d.Draft["activity"])

	// team payload without an id
	p := teamPayload()
	delete(p["team"].(map[string]any), "id")
	gw.lists["/teams/ABC"] = p
	_, err = cr.Create(ctx, admin, entities.Activities, domain.Scope{Team: "ABC"}, values)
	require.ErrorIs(t, err, domain.ErrNotFound)
	d, _ = cr.Draft(ctx, admin, entities.Activities, domain.Scope{Team: "ABC"})
	assert.Equal(t, "2024-06-02T19:00", d.Draft["activityTime"])

	assert.Empty(t, gw.sent)
}
