package app_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gezgi_admin/internal/app"
	"gezgi_admin/internal/domain"
)

func creds(user, pass string) url.Values {
	return url.Values{"username": {user}, "password": {pass}}
}

func TestLogin_Success(t *testing.T) {
	a := app.NewAuth(&fakeGateway{loginToken: "abc.def.ghi"})
	tok, errs, err := a.Login(context.Background(), creds("ada", "password1"))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "abc.def.ghi", tok)
}

func TestLogin_ValidatesBeforeSending(t *testing.T) {
	a := app.NewAuth(&fakeGateway{loginErr: errors.New("must not be called")})
	_, errs, err := a.Login(context.Background(), creds("a", "short"))
	require.NoError(t, err)
	assert.Equal(t, "Username must be at least 2 characters.", errs["username"])
	assert.Equal(t, "Password must be at least 8 characters", errs["password"])
}

func TestLogin_BadRequestShowsServerText(t *testing.T) {
	a := app.NewAuth(&fakeGateway{loginErr: &domain.APIError{Status: 400, Message: "Invalid username or password"}})
	_, _, err := a.Login(context.Background(), creds("ada", "password1"))
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", err.Error())
}

func TestLogin_OtherFailuresAreGeneric(t *testing.T) {
	a := app.NewAuth(&fakeGateway{loginErr: &domain.APIError{Status: 502, Message: "bad gateway"}})
	_, _, err := a.Login(context.Background(), creds("ada", "password1"))
	require.Error(t, err)
	assert.Equal(t, app.LoginFailure, err.Error())
}

func TestParseClaims(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": 7, "name": "Ada", "isAdmin": true,
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)

	c, ok := app.ParseClaims(tok)
	require.True(t, ok)
	assert.Equal(t, domain.Claims{ID: 7, Name: "Ada", IsAdmin: true}, c)

	_, ok = app.ParseClaims("not-a-token")
	assert.False(t, ok)
	_, ok = app.ParseClaims("")
	assert.False(t, ok)
}
