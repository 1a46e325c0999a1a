package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"github.com/mchic/setlist/internal/config"
	"github.com/mchic/setlist/internal/metrics"
	"github.com/mchic/setlist/pkg/response"
)

// BasicAuth checks requests against the single configured credential pair
type BasicAuth struct {
	user  string
	pass  string
	realm string
}

func NewBasicAuth(cfg config.AuthConfig) *BasicAuth {
	return &BasicAuth{
		user:  cfg.User,
		pass:  cfg.Pass,
		realm: cfg.Realm,
	}
}

// Valid compares user and pass in constant time
func (m *BasicAuth) Valid(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(m.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(m.pass)) == 1
	return userOK && passOK
}

// ValidHeader checks an Authorization header value of the form "Basic <base64>"
func (m *BasicAuth) ValidHeader(header string) bool {
	scheme, encoded, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "basic") {
		return false
	}
	return m.validEncoded(strings.TrimSpace(encoded))
}

func (m *BasicAuth) validEncoded(encoded string) bool {
	if encoded == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return false
	}
	return m.Valid(user, pass)
}

// Authenticate rejects requests without valid Basic credentials
func (m *BasicAuth) Authenticate() fiber.Handler {
	return basicauth.New(basicauth.Config{
		Realm:        m.realm,
		Authorizer:   m.Valid,
		Unauthorized: m.challenge,
	})
}

// AuthenticateQuery reads the credentials from a query parameter, for
// browser websockets which cannot set headers. Both "Basic <base64>" and
// the bare base64 value are accepted.
func (m *BasicAuth) AuthenticateQuery(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query(param))
		if m.ValidHeader(token) || m.validEncoded(token) {
			return c.Next()
		}
		return m.challenge(c)
	}
}

func (m *BasicAuth) challenge(c *fiber.Ctx) error {
	metrics.AuthFailures.Inc()
	c.Set(fiber.HeaderWWWAuthenticate, fmt.Sprintf("Basic realm=%q", m.realm))
	return response.Unauthorized(c, response.MessageUnauthorized)
}
