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

func newAccordion() (*app.Accordion, *fakeGateway, *memStates, *memNotices, *memAudit) {
	gw := &fakeGateway{lists: map[string]any{
		"/admin/guides": guidesPayload(),
		"/teams/ABC":    teamPayload(),
	}}
	st, nt, au := newMemStates(), newMemNotices(), &memAudit{}
	return app.NewAccordion(gw, st, nt, au), gw, st, nt, au
}

// guideValues is the submitted edit form for guide 7 with a new email.
func guideValues(email string) url.Values {
	return url.Values{
		"name": {"Ada"}, "username": {"user7"}, "languageId": {"1"},
		"email": {email}, "phone": {"555"}, "passportNo": {"P123456"},
		"nationalityId": {"3"}, "birth": {"1990-05-01"},
		"intimate": {"Bob"}, "intimacy": {"Brother"}, "intimatePhone": {"556"},
	}
}

func TestBeginEdit_SeedsDraftFromRecord(t *testing.T) {
	acc, _, _, _, _ := newAccordion()
	ctx := context.Background()

	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Guides, domain.Scope{}, 7))

	st, err := acc.State(ctx, admin, entities.Guides, domain.Scope{})
	require.NoError(t, err)
	require.NotNil(t, st.EditingID)
	assert.Equal(t, int64(7), *st.EditingID)
	assert.Equal(t, "Ada", st.Shadow.Str("name"))
	assert.Equal(t, "ada@old.example", st.Draft["email"])
	assert.Equal(t, "1990-05-01", st.Draft["birth"])
	assert.Equal(t, "1", st.Draft["languageId"])
	_, hasPw := st.Draft["password"]
	assert.False(t, hasPw, "secret fields are never seeded")
	assert.True(t, st.Expanded[7])
}

func TestBeginEdit_SecondRowReplacesFirst(t *testing.T) {
	acc, _, _, _, _ := newAccordion()
	ctx := context.Background()

	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Guides, domain.Scope{}, 7))
	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Guides, domain.Scope{}, 8))

	st, err := acc.State(ctx, admin, entities.Guides, domain.Scope{})
	require.NoError(t, err)
	assert.True(t, st.Editing(8))
	assert.False(t, st.Editing(7))
	assert.Equal(t, "Grace", st.Shadow.Str("name"))
}

func TestBeginEdit_UnknownRecord(t *testing.T) {
	acc, _, _, _, _ := newAccordion()
	err := acc.BeginEdit(context.Background(), admin, entities.Guides, domain.Scope{}, 99)
	assert.ErrorIs(t, err, domain.ErrUnknownRecord)
}

func TestSave_Success(t *testing.T) {
	acc, gw, _, nt, au := newAccordion()
	gw.sendBody = "updated"
	ctx := context.Background()

	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Guides, domain.Scope{}, 7))
	out, err := acc.Save(ctx, admin, entities.Guides, domain.Scope{}, guideValues("ada@new.example"))
	require.NoError(t, err)
	assert.True(t, out.Reload)
	assert.False(t, out.Invalid)

	require.Len(t, gw.sent, 1)
	call := gw.sent[0]
	assert.Equal(t, http.MethodPut, call.Method)
	assert.Equal(t, "/put/guides/7", call.Path)
	assert.Equal(t, "ada@new.example", call.Body["email"])
	assert.Equal(t, "Ada", call.Body["name"])
	// foreign keys travel as numbers
	assert.Equal(t, float64(1), call.Body["languageId"])
	// shadow fields the form does not declare survive the merge
	assert.Equal(t, float64(7), call.Body["id"])
	_, hasPw := call.Body["password"]
	assert.False(t, hasPw)

	notes, _ := nt.Pop(ctx, admin.UI)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NoticeSuccess, notes[0].Kind)
	assert.Equal(t, "updated", notes[0].Text)

	st, _ := acc.State(ctx, admin, entities.Guides, domain.Scope{})
	assert.Nil(t, st.EditingID)
	assert.Nil(t, st.Shadow)

	require.Len(t, au.entries, 1)
	assert.Equal(t, "update", au.entries[0].Action)
	assert.Equal(t, http.StatusOK, au.entries[0].Status)
	assert.Equal(t, "Root", au.entries[0].Actor)
}

func TestSave_InvalidNeverSends(t *testing.T) {
	acc, gw, _, nt, _ := newAccordion()
	ctx := context.Background()

	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Guides, domain.Scope{}, 7))
	out, err := acc.Save(ctx, admin, entities.Guides, domain.Scope{}, guideValues("not-an-email"))
	require.NoError(t, err)
	assert.True(t, out.Invalid)
	assert.Empty(t, gw.sent)

	st, _ := acc.State(ctx, admin, entities.Guides, domain.Scope{})
	assert.True(t, st.Editing(7))
	assert.Equal(t, "Invalid email address", st.Errors["email"])
	assert.Equal(t, "not-an-email", st.Draft["email"])

	notes, _ := nt.Pop(ctx, admin.UI)
	assert.Empty(t, notes)
}

func TestSave_PasswordMismatch(t *testing.T) {
	acc, gw, _, _, _ := newAccordion()
	ctx := context.Background()

	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Guides, domain.Scope{}, 7))
	v := guideValues("ada@new.example")
	v.Set("password", "secret123")
	v.Set("rePassword", "secret124")
	out, err := acc.Save(ctx, admin, entities.Guides, domain.Scope{}, v)
	require.NoError(t, err)
	assert.True(t, out.Invalid)
	assert.Empty(t, gw.sent)

	st, _ := acc.State(ctx, admin, entities.Guides, domain.Scope{})
	assert.Equal(t, "Passwords do not match", st.Errors["rePassword"])
}

func TestSave_FailureKeepsEditState(t *testing.T) {
	acc, gw, _, nt, au := newAccordion()
	gw.sendErr = &domain.APIError{Status: 400, Message: "Email already in use"}
	ctx := context.Background()

	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Guides, domain.Scope{}, 7))
	out, err := acc.Save(ctx, admin, entities.Guides, domain.Scope{}, guideValues("grace@example.com"))
	require.NoError(t, err)
	assert.False(t, out.Reload)

	notes, _ := nt.Pop(ctx, admin.UI)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NoticeError, notes[0].Kind)
	assert.Equal(t, "Email already in use", notes[0].Text)

	st, _ := acc.State(ctx, admin, entities.Guides, domain.Scope{})
	assert.True(t, st.Editing(7))
	assert.Equal(t, "grace@example.com", st.Draft["email"])

	require.Len(t, au.entries, 1)
	assert.Equal(t, 400, au.entries[0].Status)
}

func TestSave_UnparseableFailureUsesFallback(t *testing.T) {
	acc, gw, _, nt, _ := newAccordion()
	gw.sendErr = &domain.APIError{Status: 500, Message: domain.GenericFailure}
	ctx := context.Background()

	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Guides, domain.Scope{}, 7))
	_, err := acc.Save(ctx, admin, entities.Guides, domain.Scope{}, guideValues("ada@new.example"))
	require.NoError(t, err)

	notes, _ := nt.Pop(ctx, admin.UI)
	require.Len(t, notes, 1)
	assert.Equal(t, "An unknown error occurred.", notes[0].Text)
}

func TestSave_WithoutEditing(t *testing.T) {
	acc, gw, _, _, _ := newAccordion()
	_, err := acc.Save(context.Background(), admin, entities.Guides, domain.Scope{}, guideValues("a@b.example"))
	assert.ErrorIs(t, err, domain.ErrNotEditing)
	assert.Empty(t, gw.sent)
}

func TestCancelEdit_NoNetwork(t *testing.T) {
	acc, gw, _, _, _ := newAccordion()
	ctx := context.Background()

	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Guides, domain.Scope{}, 7))
	fetches := len(gw.fetched)
	require.NoError(t, acc.CancelEdit(ctx, admin, entities.Guides, domain.Scope{}))

	st, _ := acc.State(ctx, admin, entities.Guides, domain.Scope{})
	assert.Nil(t, st.EditingID)
	assert.True(t, st.Expanded[7], "cancel keeps the panel open")
	assert.Equal(t, fetches, len(gw.fetched))
	assert.Empty(t, gw.sent)
}

func TestExpandCollapse_Independent(t *testing.T) {
	acc, _, _, _, _ := newAccordion()
	ctx := context.Background()

	require.NoError(t, acc.Expand(ctx, admin, entities.Guides, domain.Scope{}, 7))
	require.NoError(t, acc.Expand(ctx, admin, entities.Guides, domain.Scope{}, 8))
	require.NoError(t, acc.Collapse(ctx, admin, entities.Guides, domain.Scope{}, 7))

	st, _ := acc.State(ctx, admin, entities.Guides, domain.Scope{})
	assert.False(t, st.Expanded[7])
	assert.True(t, st.Expanded[8])
}

func TestRemove_RequiresConfirmation(t *testing.T) {
	acc, gw, _, _, _ := newAccordion()
	out, err := acc.Remove(context.Background(), admin, entities.Guides, domain.Scope{}, 7, false)
	require.NoError(t, err)
	assert.False(t, out.Reload)
	assert.Empty(t, gw.sent)
}

func TestRemove_TeamNavigatesToDashboard(t *testing.T) {
	acc, gw, _, nt, _ := newAccordion()
	ctx := context.Background()

	out, err := acc.Remove(ctx, admin, entities.Team, domain.Scope{Team: "ABC"}, 31, true)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", out.Navigate)
	require.Len(t, gw.sent, 1)
	assert.Equal(t, http.MethodDelete, gw.sent[0].Method)
	assert.Equal(t, "/delete/teams/ABC", gw.sent[0].Path)

	notes, _ := nt.Pop(ctx, admin.UI)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NoticeSuccess, notes[0].Kind)
}

func TestRemove_ScopedActivityPath(t *testing.T) {
	acc, gw, _, _, _ := newAccordion()
	_, err := acc.Remove(context.Background(), admin, entities.Activities, domain.Scope{Team: "ABC"}, 5, true)
	require.NoError(t, err)
	require.Len(t, gw.sent, 1)
	assert.Equal(t, "/delete/teams/ABC/activity/5", gw.sent[0].Path)
}

func TestRemove_FailureLeavesStateUntouched(t *testing.T) {
	acc, gw, _, nt, _ := newAccordion()
	ctx := context.Background()
	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Guides, domain.Scope{}, 7))
	gw.sendErr = &domain.APIError{Status: 409, Message: "Guide has teams"}

	out, err := acc.Remove(ctx, admin, entities.Guides, domain.Scope{}, 7, true)
	require.NoError(t, err)
	assert.False(t, out.Reload)

	st, _ := acc.State(ctx, admin, entities.Guides, domain.Scope{})
	assert.True(t, st.Editing(7))
	notes, _ := nt.Pop(ctx, admin.UI)
	require.Len(t, notes, 1)
	assert.Equal(t, "Guide has teams", notes[0].Text)
}

func TestAdminOnly_RejectsRegularSession(t *testing.T) {
	acc, gw, _, _, _ := newAccordion()
	ctx := context.Background()

	err := acc.BeginEdit(ctx, regular, entities.Team, domain.Scope{Team: "ABC"}, 31)
	assert.ErrorIs(t, err, domain.ErrReadOnly)
	_, err = acc.Remove(ctx, regular, entities.Team, domain.Scope{Team: "ABC"}, 31, true)
	assert.ErrorIs(t, err, domain.ErrReadOnly)
	assert.Empty(t, gw.sent)

	// guides are open to every signed-in user
	assert.NoError(t, acc.BeginEdit(ctx, regular, entities.Guides, domain.Scope{}, 7))
}

func TestSave_ActivityExactlyOnePlace(t *testing.T) {
	acc, gw, _, _, _ := newAccordion()
	ctx := context.Background()
	sc := domain.Scope{Team: "ABC"}

	require.NoError(t, acc.BeginEdit(ctx, admin, entities.Activities, sc, 5))
	v := url.Values{
		"activity": {"Transfer"}, "activityTime": {"2024-06-01T10:00"},
		"airportId": {"4"}, "hotelId": {"9"},
	}
	out, err := acc.Save(ctx, admin, entities.Activities, sc, v)
	require.NoError(t, err)
	assert.True(t, out.Invalid)
	assert.Empty(t, gw.sent)

	// switching from airport to hotel clears the airport reference
	v.Set("airportId", "")
	out, err = acc.Save(ctx, admin, entities.Activities, sc, v)
	require.NoError(t, err)
	assert.True(t, out.Reload)
	require.Len(t, gw.sent, 1)
	assert.Equal(t, "/put/activities/5", gw.sent[0].Path)
	assert.Nil(t, gw.sent[0].Body["airportId"])
	assert.Equal(t, float64(9), gw.sent[0].Body["hotelId"])
	assert.NotContains(t, gw.sent[0].Body, "teamId", "edit never injects the parent id")
}
