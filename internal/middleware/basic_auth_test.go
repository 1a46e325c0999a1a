package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/mchic/setlist/internal/config"
	"github.com/mchic/setlist/pkg/response"
)

func newBasicAuth() *BasicAuth {
	return NewBasicAuth(config.AuthConfig{User: "duo", Pass: "s3:greto", Realm: "Mchic"})
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestBasicAuthValidHeader(t *testing.T) {
	auth := newBasicAuth()

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid", basic("duo", "s3:greto"), true},
		{"scheme is case insensitive", "basic " + base64.StdEncoding.EncodeToString([]byte("duo:s3:greto")), true},
		{"wrong password", basic("duo", "s3"), false},
		{"wrong user", basic("trio", "s3:greto"), false},
		{"empty", "", false},
		{"bearer", "Bearer abc", false},
		{"scheme only", "Basic", false},
		{"not base64", "Basic !!!", false},
		{"no colon", "Basic " + base64.StdEncoding.EncodeToString([]byte("duo")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, auth.ValidHeader(tt.header))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	auth := newBasicAuth()
	app := fiber.New()
	app.Get("/private", auth.Authenticate(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong password", basic("duo", "s3"), http.StatusUnauthorized},
		{"not base64", "Basic !!!", http.StatusUnauthorized},
		{"password with colon", basic("duo", "s3:greto"), http.StatusOK},
		{"lowercase scheme", "basic " + base64.StdEncoding.EncodeToString([]byte("duo:s3:greto")), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tt.want, resp.StatusCode)
			if tt.want != http.StatusUnauthorized {
				return
			}

			require.Equal(t, `Basic realm="Mchic"`, resp.Header.Get(fiber.HeaderWWWAuthenticate))
			var body response.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, response.CodeUnauthorized, body.Code)
			require.Equal(t, response.MessageUnauthorized, body.Message)
		})
	}
}

func TestAuthenticateQuery(t *testing.T) {
	auth := newBasicAuth()
	app := fiber.New()
	app.Get("/ws", auth.AuthenticateQuery("token"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	encoded := base64.StdEncoding.EncodeToString([]byte("duo:s3:greto"))
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"bare token", encoded, http.StatusOK},
		{"with scheme", "Basic " + encoded, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong", base64.StdEncoding.EncodeToString([]byte("duo:nope")), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws?token="+url.QueryEscape(tt.token), nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
