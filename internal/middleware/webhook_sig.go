package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// validateSignature verifies an HMAC-SHA1 of the raw request body.
func validateSignature(key, signature string, body []byte) bool {
	if key == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// WebhookAuth validates the signature header on /webhook/ routes. An
// empty key disables verification so local setups keep working.
func WebhookAuth(getKey func() string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Request().URL.Path, "/webhook/") {
				return next(c)
			}
			key := getKey()
			if key == "" {
				return next(c)
			}

			body, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return c.String(http.StatusBadRequest, "Failed to read request body")
			}
			c.Request().Body = io.NopCloser(bytes.NewReader(body))

			signature := c.Request().Header.Get("X-Webhook-Signature")
			if !validateSignature(key, signature, body) {
				return c.String(http.StatusUnauthorized, "Invalid webhook signature")
			}
			return next(c)
		}
	}
}
