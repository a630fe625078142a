package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebalance/internal/models"
	"github.com/terraincognita07/bitebalance/internal/services"
)

type loginRequest struct {
	Email      string `json:"email" form:"email" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe" form:"rememberMe"`
	Next       string `json:"next" form:"next"`
}

// postLoginRedirectPath honours a local next path unless the password
// must be changed first.
func postLoginRedirectPath(user *models.User, next string) string {
	if user.MustChangePassword {
		return "/change-password"
	}
	return sanitizeRedirectPath(next, "/dashboard")
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	fields, err := readRawFields(c)
	if err != nil {
		return handler.respondFormError(c, fiber.StatusBadRequest, err.Error(), "/register")
	}

	name, _ := fields.first("name", "fullName")
	username, _ := fields.first("username")
	email, _ := fields.first("email")
	confirm, _ := fields.first("confirmPassword", "confirm_password")
	registration := services.Registration{
		Name:            name,
		Username:        username,
		Email:           email,
		Password:        fields["password"],
		ConfirmPassword: confirm,
	}

	profileUpdate, err := parseProfileUpdate(fields)
	if err != nil {
		return handler.respondRegisterError(c, err)
	}
	profileUpdate.Name = nil
	registration.Profile = profileUpdate

	result, err := handler.authService.Register(registration, handler.now())
	if err != nil {
		return handler.respondRegisterError(c, err)
	}

	if err := handler.setAuthCookie(c, &result.User, true); err != nil {
		return handler.internalError(c, err, "failed to create session")
	}
	handler.requestLog(c).WithField("user_id", result.User.ID).Info("account registered")

	if !wantsJSON(c) {
		if result.Estimate != nil {
			return c.Redirect("/dashboard", fiber.StatusSeeOther)
		}
		return c.Redirect("/onboarding", fiber.StatusSeeOther)
	}

	payload := fiber.Map{"ok": true, "username": result.User.Username}
	if result.Estimate != nil {
		payload["dailyCalories"] = result.Estimate.DailyCalories
		payload["macroGoals"] = result.Estimate.Macros
	}
	return c.Status(fiber.StatusCreated).JSON(payload)
}

func (handler *Handler) respondRegisterError(c *fiber.Ctx, err error) error {
	if _, known := serviceErrorStatus(err); !known {
		return handler.internalError(c, err, "failed to create account")
	}
	if wantsJSON(c) {
		return handler.respondServiceError(c, err, "failed to create account")
	}
	return handler.respondFormError(c, fiber.StatusBadRequest, err.Error(), "/register")
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	now := handler.now()
	limiterKey := requestLimiterKey(c)
	if handler.loginLimiter.blocked(limiterKey, now) {
		return handler.respondFormError(c, fiber.StatusTooManyRequests, "too many login attempts", "/login")
	}

	request := loginRequest{}
	if message, ok := bindRequest(c, &request); !ok {
		return handler.respondFormError(c, fiber.StatusBadRequest, message, "/login")
	}

	user, err := handler.authService.Authenticate(request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			handler.loginLimiter.fail(limiterKey, now)
			return handler.respondFormError(c, fiber.StatusUnauthorized, err.Error(), "/login")
		}
		return handler.internalError(c, err, "failed to sign in")
	}
	handler.loginLimiter.forget(limiterKey)

	if err := handler.setAuthCookie(c, &user, request.RememberMe); err != nil {
		return handler.internalError(c, err, "failed to create session")
	}

	return redirectOrJSON(c, postLoginRedirectPath(&user, request.Next), fiber.Map{
		"ok":                 true,
		"mustChangePassword": user.MustChangePassword,
	})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return redirectOrJSON(c, "/login", fiber.Map{"ok": true})
}

// LogoutAll revokes every session of the current user, this one included.
func (handler *Handler) LogoutAll(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if _, err := handler.authService.RevokeSessions(user.ID); err != nil {
		return handler.respondServiceError(c, err, "failed to revoke sessions")
	}
	handler.clearAuthCookie(c)
	return redirectOrJSON(c, "/login", fiber.Map{"ok": true})
}

func (handler *Handler) SetupStatus(c *fiber.Ctx) error {
	required, err := handler.stats.RequiresInitialSetup()
	if err != nil {
		return handler.internalError(c, err, "failed to load setup status")
	}
	return c.JSON(fiber.Map{"requiresSetup": required})
}
