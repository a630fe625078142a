package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebalance/internal/models"
	"github.com/terraincognita07/bitebalance/internal/services"
)

func profileCompleted(profile *models.Profile) bool {
	return profile != nil && profile.OnboardingCompleted && profile.HasEstimate()
}

// CompleteOnboarding validates the six estimator inputs, stores the profile
// with its computed targets and returns the breakdown.
func (handler *Handler) CompleteOnboarding(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fields, err := readRawFields(c)
	if err != nil {
		return handler.respondOnboardingError(c, err)
	}
	inputs, err := parseProfileInputs(fields)
	if err != nil {
		return handler.respondOnboardingError(c, err)
	}
	extras := services.OnboardingExtras{}
	if value := fields.text("dietType"); value != nil {
		extras.DietType = *value
	}
	if value := fields.text("allergies"); value != nil {
		extras.Allergies = *value
	}

	_, result, err := handler.profiles.CompleteOnboarding(user.ID, inputs, extras, handler.now())
	if err != nil {
		if isClientInputError(err) {
			return handler.respondOnboardingError(c, err)
		}
		return handler.internalError(c, err, "failed to save profile")
	}

	handler.requestLog(c).WithField("goal", inputs.Goal).Debug("onboarding completed")
	return redirectOrJSON(c, "/dashboard", fiber.Map{
		"ok":            true,
		"dailyCalories": result.DailyCalories,
		"macroGoals":    result.Macros,
		"bmr":           result.BMR,
		"tdee":          result.TDEE,
		"clamped":       result.Clamped,
	})
}

func (handler *Handler) respondOnboardingError(c *fiber.Ctx, err error) error {
	if wantsJSON(c) {
		return respondInputError(c, err)
	}
	handler.setFlashCookie(c, FlashPayload{Error: err.Error()})
	return c.Redirect("/onboarding", fiber.StatusSeeOther)
}
