package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAuthToken = "12345"

// sign computes Twilio's request signature for a form POST.
func sign(t *testing.T, rawURL string, form url.Values) string {
	t.Helper()
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(rawURL)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(form.Get(k))
	}
	mac := hmac.New(sha1.New, []byte(testAuthToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func twilioApp() *fiber.App {
	app := fiber.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app.Post("/webhook/twilio", ValidateTwilioSignature(testAuthToken, logger), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func formRequest(target string, form url.Values, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signature != "" {
		req.Header.Set("X-Twilio-Signature", signature)
	}
	return req
}

func TestValidateTwilioSignature(t *testing.T) {
	form := url.Values{"From": {"whatsapp:+5511999999999"}, "Body": {"SIM"}}

	signed := "http://example.com/webhook/twilio"

	tests := []struct {
		name      string
		target    string
		signature string
		want      int
	}{
		{name: "valid absolute target", target: signed, signature: sign(t, signed, form), want: fiber.StatusOK},
		{name: "valid path target", target: "/webhook/twilio", signature: sign(t, signed, form), want: fiber.StatusOK},
		{
			name:      "valid with query string",
			target:    "/webhook/twilio?shop=centro",
			signature: sign(t, signed+"?shop=centro", form),
			want:      fiber.StatusOK,
		},
		{name: "query string is signed", target: "/webhook/twilio?shop=centro", signature: sign(t, signed, form), want: fiber.StatusUnauthorized},
		{name: "missing", target: signed, signature: "", want: fiber.StatusUnauthorized},
		{name: "wrong", target: signed, signature: sign(t, "http://example.com/other", form), want: fiber.StatusUnauthorized},
	}

	app := twilioApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(formRequest(tt.target, form, tt.signature))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequireAdminToken(t *testing.T) {
	newApp := func(token string) *fiber.App {
		app := fiber.New()
		app.Get("/admin/orders", RequireAdminToken(token), func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
		return app
	}

	t.Run("open when no token configured", func(t *testing.T) {
		resp, err := newApp("").Test(httptest.NewRequest(http.MethodGet, "/admin/orders", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.Header.Set(AdminTokenHeader, "nope")
		resp, err := newApp("secret").Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("accepts configured token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.Header.Set(AdminTokenHeader, "secret")
		resp, err := newApp("secret").Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
