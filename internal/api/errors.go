package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebalance/internal/nutrition"
	"github.com/terraincognita07/bitebalance/internal/services"
)

type errorStatus struct {
	err    error
	status int
}

// serviceErrorStatuses lists every service error whose message is safe to
// return as is.
var serviceErrorStatuses = []errorStatus{
	{nutrition.ErrInvalidInput, fiber.StatusBadRequest},
	{nutrition.ErrUnrecognizedEnum, fiber.StatusBadRequest},
	{nutrition.ErrInvalidMeasurement, fiber.StatusBadRequest},

	{services.ErrNameRequired, fiber.StatusBadRequest},
	{services.ErrEmailInvalid, fiber.StatusBadRequest},
	{services.ErrUsernameInvalid, fiber.StatusBadRequest},
	{services.ErrPasswordMismatch, fiber.StatusBadRequest},
	{services.ErrWeakPassword, fiber.StatusBadRequest},
	{services.ErrPasswordTooLong, fiber.StatusBadRequest},
	{services.ErrEmailTaken, fiber.StatusConflict},
	{services.ErrUsernameTaken, fiber.StatusConflict},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrUserNotFound, fiber.StatusNotFound},
	{services.ErrProfileTextTooLong, fiber.StatusBadRequest},

	{services.ErrSettingsPasswordMissing, fiber.StatusBadRequest},
	{services.ErrSettingsPasswordInvalid, fiber.StatusUnauthorized},
	{services.ErrSettingsPasswordChangeInvalidInput, fiber.StatusBadRequest},
	{services.ErrSettingsPasswordMismatch, fiber.StatusBadRequest},
	{services.ErrSettingsInvalidCurrentPassword, fiber.StatusUnauthorized},
	{services.ErrSettingsNewPasswordMustDiffer, fiber.StatusBadRequest},
	{services.ErrSettingsWeakPassword, fiber.StatusBadRequest},

	{services.ErrFoodNotFound, fiber.StatusNotFound},
	{services.ErrFoodNameRequired, fiber.StatusBadRequest},
	{services.ErrFoodNameTooLong, fiber.StatusBadRequest},
	{services.ErrFoodValuesInvalid, fiber.StatusBadRequest},
	{services.ErrFoodExists, fiber.StatusBadRequest},
	{services.ErrFoodSearchPageRange, fiber.StatusBadRequest},
	{services.ErrFoodSearchLimit, fiber.StatusBadRequest},

	{services.ErrMealLogNotFound, fiber.StatusNotFound},
	{services.ErrMealLogForbidden, fiber.StatusForbidden},
	{services.ErrMealTypeInvalid, fiber.StatusBadRequest},
	{services.ErrMealQuantityInvalid, fiber.StatusBadRequest},
	{services.ErrMealLogFoodRequired, fiber.StatusBadRequest},

	{services.ErrPostNotFound, fiber.StatusNotFound},
	{services.ErrPostBodyRequired, fiber.StatusBadRequest},
	{services.ErrPostBodyTooLong, fiber.StatusBadRequest},

	{services.ErrChallengeNotFound, fiber.StatusNotFound},
	{services.ErrChallengeActionInvalid, fiber.StatusBadRequest},

	{services.ErrPlanNameRequired, fiber.StatusBadRequest},
	{services.ErrPlanNotFound, fiber.StatusNotFound},

	{services.ErrMealPlanFieldsRequired, fiber.StatusBadRequest},
	{services.ErrMealPlanDateInvalid, fiber.StatusBadRequest},
	{services.ErrMealPlanRangeInvalid, fiber.StatusBadRequest},
	{services.ErrMealPlanTextTooLong, fiber.StatusBadRequest},

	{services.ErrAdminSelfDelete, fiber.StatusBadRequest},
	{services.ErrWarningMessageRequired, fiber.StatusBadRequest},
	{services.ErrWarningMessageTooLong, fiber.StatusBadRequest},

	{services.ErrAINotConfigured, fiber.StatusBadRequest},
	{services.ErrMealItemsRequired, fiber.StatusBadRequest},
	{services.ErrMealItemInvalid, fiber.StatusBadRequest},
	{services.ErrPromptRequired, fiber.StatusBadRequest},
	{services.ErrPromptTooLong, fiber.StatusBadRequest},
}

func serviceErrorStatus(err error) (int, bool) {
	for _, known := range serviceErrorStatuses {
		if errors.Is(err, known.err) {
			return known.status, true
		}
	}
	return 0, false
}

func isClientInputError(err error) bool {
	status, ok := serviceErrorStatus(err)
	return ok && status == fiber.StatusBadRequest
}

// respondServiceError maps known service errors to their status and logs
// everything else as an internal failure described by fallback.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	status, ok := serviceErrorStatus(err)
	if !ok {
		return handler.internalError(c, err, fallback)
	}
	var fieldErr *nutrition.FieldError
	if errors.As(err, &fieldErr) {
		return fieldError(c, status, fieldErr.Error(), fieldErr.Field)
	}
	return apiError(c, status, err.Error())
}
