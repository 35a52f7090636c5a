package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ValidateMetaSignature checks the X-Hub-Signature-256 header Meta sends
// with every webhook POST: an HMAC-SHA256 of the raw body keyed with the
// app secret.
func ValidateMetaSignature(appSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("X-Hub-Signature-256")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing webhook signature",
			})
		}

		signature, err := hex.DecodeString(strings.TrimPrefix(header, "sha256="))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Malformed webhook signature",
			})
		}

		mac := hmac.New(sha256.New, []byte(appSecret))
		mac.Write(c.Body())
		if !hmac.Equal(signature, mac.Sum(nil)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid webhook signature",
			})
		}

		return c.Next()
	}
}
