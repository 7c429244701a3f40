package app

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/form"
)

// LoginFailure is shown for every login error except a 400.
const LoginFailure = "An error occured while login"

var loginSchema = form.Schema{Fields: []form.Field{
	{Name: "username", Label: "Username", Kind: form.Text,
		Rules: []form.Rule{form.Min(2, "Username must be at least 2 characters.")}},
	{Name: "password", Label: "Password", Kind: form.Password, Secret: true,
		Rules: []form.Rule{form.Min(8, "Password must be at least 8 characters")}},
}}

// LoginForm exposes the login schema for rendering.
func LoginForm() form.Schema { return loginSchema }

type Auth struct {
	gw domain.Gateway
}

func NewAuth(gw domain.Gateway) *Auth { return &Auth{gw: gw} }

// Login validates the credentials and exchanges them for a token. A
// returned form.Errors means nothing was sent; a returned error carries
// the text to show the user.
func (a *Auth) Login(ctx context.Context, values url.Values) (string, form.Errors, error) {
	patch, errs := loginSchema.Parse(values)
	if !errs.Empty() {
		return "", errs, nil
	}
	user, _ := patch["username"].(string)
	pass, _ := patch["password"].(string)

	token, err := a.gw.Login(ctx, user, pass)
	if err != nil {
		log.Info().Err(err).Str("username", user).Msg("login rejected")
		var ae *domain.APIError
		if errors.As(err, &ae) && ae.Status == http.StatusBadRequest {
			return "", nil, errors.New(ae.Message)
		}
		return "", nil, errors.New(LoginFailure)
	}
	return token, nil, nil
}

// ParseClaims reads the display claims of token. The signature is not
// checked here: the remote API verifies the token on every call.
func ParseClaims(token string) (domain.Claims, bool) {
	if token == "" {
		return domain.Claims{}, false
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return domain.Claims{}, false
	}
	var c domain.Claims
	c.Name, _ = mc["name"].(string)
	c.IsAdmin, _ = mc["isAdmin"].(bool)
	switch v := mc["id"].(type) {
	case float64:
		c.ID = int64(v)
	case string:
		c.ID = domain.Record{"id": v}.ID()
	}
	return c, true
}
