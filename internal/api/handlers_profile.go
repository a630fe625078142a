package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebalance/internal/models"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword"`
	NewPassword     string `json:"newPassword" form:"newPassword"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

type deleteAccountRequest struct {
	Password string `json:"password" form:"password"`
}

type profileUserView struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (handler *Handler) userView(user *models.User) profileUserView {
	return profileUserView{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Name:      user.Name,
		Role:      handler.admin.Policy().Role(user.Email),
		CreatedAt: user.CreatedAt,
	}
}

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := handler.profiles.FindProfile(user.ID)
	if err != nil {
		return handler.internalError(c, err, "failed to load profile")
	}
	stats, err := handler.stats.ForUser(user.ID)
	if err != nil {
		return handler.internalError(c, err, "failed to load profile")
	}

	return c.JSON(fiber.Map{
		"user":    handler.userView(user),
		"profile": profile,
		"stats":   stats,
	})
}

// UpdateProfile applies a partial update and recomputes the targets when
// all six estimator inputs are present afterwards.
func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fields, err := readRawFields(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	update, err := parseProfileUpdate(fields)
	if err != nil {
		return respondInputError(c, err)
	}

	profile, result, err := handler.profiles.Update(user.ID, update, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update profile")
	}
	if update.Name != nil {
		user.Name = *update.Name
	}

	payload := fiber.Map{
		"ok":      true,
		"user":    handler.userView(user),
		"profile": profile,
	}
	if result != nil {
		payload["dailyCalories"] = result.DailyCalories
		payload["macroGoals"] = result.Macros
	}
	return c.JSON(payload)
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	request := changePasswordRequest{}
	if err := c.BodyParser(&request); err != nil {
		return handler.respondFormError(c, fiber.StatusBadRequest, errInvalidBody.Error(), "/change-password")
	}

	version, err := handler.settings.ChangePassword(user.ID, request.CurrentPassword, request.NewPassword, request.ConfirmPassword)
	if err != nil {
		if _, known := serviceErrorStatus(err); known && !wantsJSON(c) {
			return handler.respondFormError(c, fiber.StatusBadRequest, err.Error(), "/change-password")
		}
		return handler.respondServiceError(c, err, "failed to change password")
	}

	// Other sessions are revoked; this one continues on the new version.
	user.SessionVersion = version
	user.MustChangePassword = false
	if err := handler.setAuthCookie(c, user, false); err != nil {
		return handler.internalError(c, err, "failed to create session")
	}
	return redirectOrJSON(c, "/dashboard", fiber.Map{"ok": true})
}

func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	request := deleteAccountRequest{}
	if err := parseOptionalBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, errInvalidBody.Error())
	}
	if err := handler.settings.DeleteAccount(user.ID, request.Password); err != nil {
		return handler.respondServiceError(c, err, "failed to delete account")
	}

	handler.requestLog(c).WithField("user_id", user.ID).Info("account deleted")
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}
