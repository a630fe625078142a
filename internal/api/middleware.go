package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Paths a user with a temporary password may still reach.
var passwordChangeAllowedPaths = map[string]struct{}{
	"/api/settings/change-password": {},
	"/api/auth/logout":              {},
	"/api/auth/logout-all":          {},
	"/change-password":              {},
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		if isAPIPath(c.Path()) {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	c.Locals(contextUserKey, user)
	if user.MustChangePassword {
		if _, allowed := passwordChangeAllowedPaths[c.Path()]; !allowed {
			if isAPIPath(c.Path()) {
				return apiError(c, fiber.StatusForbidden, "password change required")
			}
			return c.Redirect("/change-password", fiber.StatusSeeOther)
		}
	}
	return c.Next()
}

// OptionalAuth loads the user when a valid session exists and never rejects.
func (handler *Handler) OptionalAuth(c *fiber.Ctx) error {
	if user, err := handler.authenticateRequest(c); err == nil {
		c.Locals(contextUserKey, user)
	}
	return c.Next()
}

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !handler.admin.Policy().IsAdmin(user.Email) {
		return apiError(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}

// OnboardingRequired sends members without a stored estimate to the
// onboarding page. Administrators are exempt.
func (handler *Handler) OnboardingRequired(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	if handler.admin.Policy().IsAdmin(user.Email) {
		return c.Next()
	}

	profile, err := handler.profiles.FindProfile(user.ID)
	if err != nil {
		handler.requestLog(c).WithError(err).Error("load profile for onboarding check")
		return c.Status(fiber.StatusInternalServerError).SendString("failed to load profile")
	}
	if !profileCompleted(profile) {
		return c.Redirect("/onboarding", fiber.StatusSeeOther)
	}
	return c.Next()
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
