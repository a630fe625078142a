package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// fieldError names the offending input so forms can highlight it.
func fieldError(c *fiber.Ctx, status int, message string, field string) error {
	return c.Status(status).JSON(fiber.Map{"error": message, "field": field})
}

func acceptsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), fiber.MIMEApplicationJSON)
}

func isJSONBody(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON)
}

// wantsJSON is false only for browser form posts, which get a redirect
// with a flash cookie instead of a JSON body.
func wantsJSON(c *fiber.Ctx) bool {
	if isJSONBody(c) || acceptsJSON(c) {
		return true
	}
	return !strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), fiber.MIMETextHTML)
}

func redirectOrJSON(c *fiber.Ctx, path string, payload fiber.Map) error {
	if wantsJSON(c) {
		return c.JSON(payload)
	}
	return c.Redirect(path, fiber.StatusSeeOther)
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals("csrf").(string)
	return token
}

func sanitizeRedirectPath(raw string, fallback string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return fallback
	}
	if strings.HasPrefix(candidate, "//") || !strings.HasPrefix(candidate, "/") {
		return fallback
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.IsAbs() {
		return fallback
	}
	return candidate
}

func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

// parseOptionalBody leaves target untouched when the request has no body.
func parseOptionalBody(c *fiber.Ctx, target any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(target)
}
