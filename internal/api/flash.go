package api

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const flashCookieTTL = 5 * time.Minute

// FlashPayload survives exactly one redirect.
type FlashPayload struct {
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
	Email   string `json:"email,omitempty"`
}

func (payload FlashPayload) normalized() FlashPayload {
	payload.Error = strings.TrimSpace(payload.Error)
	payload.Success = strings.TrimSpace(payload.Success)
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	return payload
}

func (payload FlashPayload) empty() bool {
	return payload.Error == "" && payload.Success == "" && payload.Email == ""
}

func (handler *Handler) setFlashCookie(c *fiber.Ctx, payload FlashPayload) {
	payload = payload.normalized()
	if payload.empty() {
		handler.clearFlashCookie(c)
		return
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(serialized),
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.now().Add(flashCookieTTL),
	})
}

func (handler *Handler) popFlashCookie(c *fiber.Ctx) FlashPayload {
	raw := strings.TrimSpace(c.Cookies(flashCookieName))
	if raw == "" {
		return FlashPayload{}
	}
	handler.clearFlashCookie(c)

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return FlashPayload{}
	}
	payload := FlashPayload{}
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return FlashPayload{}
	}
	return payload.normalized()
}

func (handler *Handler) clearFlashCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.now().Add(-1 * time.Hour),
	})
}

// respondFormError answers scripts with JSON and browsers with a redirect
// back to the page that posted the form.
func (handler *Handler) respondFormError(c *fiber.Ctx, status int, message string, page string) error {
	if wantsJSON(c) {
		return apiError(c, status, message)
	}
	handler.setFlashCookie(c, FlashPayload{Error: message, Email: c.FormValue("email")})
	return c.Redirect(page, fiber.StatusSeeOther)
}
