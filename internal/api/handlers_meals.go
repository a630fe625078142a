package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebalance/internal/services"
)

type mealLogRequest struct {
	FoodID   uint    `json:"foodId" form:"foodId" validate:"required"`
	Quantity float64 `json:"quantity" form:"quantity"`
	MealType string  `json:"mealType" form:"mealType" validate:"required"`
}

type mealPlanRequest struct {
	Date     string `json:"date" form:"date"`
	MealType string `json:"mealType" form:"mealType"`
	Title    string `json:"title" form:"title"`
	Notes    string `json:"notes" form:"notes"`
}

func (handler *Handler) ListMealLogs(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	items, err := handler.mealLogs.List(user.ID)
	if err != nil {
		return handler.internalError(c, err, "failed to load meal logs")
	}
	return c.JSON(fiber.Map{"items": items})
}

func (handler *Handler) CreateMealLog(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	request := mealLogRequest{}
	if message, ok := bindRequest(c, &request); !ok {
		return apiError(c, fiber.StatusBadRequest, message)
	}

	item, err := handler.mealLogs.Create(user.ID, services.MealLogInput{
		FoodID:   request.FoodID,
		Quantity: request.Quantity,
		MealType: request.MealType,
	}, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to log meal")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}

func (handler *Handler) DeleteMealLog(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	logID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid meal log id")
	}

	if err := handler.mealLogs.Delete(user.ID, logID); err != nil {
		return handler.respondServiceError(c, err, "failed to delete meal log")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (handler *Handler) GetDashboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	summary, err := handler.dashboard.Build(user.ID, handler.now(), handler.location)
	if err != nil {
		return handler.internalError(c, err, "failed to load dashboard")
	}
	return c.JSON(summary)
}

func (handler *Handler) ListMealPlans(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	start, end, err := services.WeekRange(c.Query("start"), c.Query("end"), handler.now(), handler.location)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load meal plans")
	}
	items, err := handler.mealPlans.List(user.ID, start, end)
	if err != nil {
		return handler.internalError(c, err, "failed to load meal plans")
	}
	return c.JSON(fiber.Map{
		"items": items,
		"start": start.Format("2006-01-02"),
		"end":   end.Format("2006-01-02"),
	})
}

func (handler *Handler) CreateMealPlan(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	request := mealPlanRequest{}
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, errInvalidBody.Error())
	}
	item, err := handler.mealPlans.Create(user.ID, services.MealPlanInput{
		Date:     request.Date,
		MealType: request.MealType,
		Title:    request.Title,
		Notes:    request.Notes,
	}, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create meal plan")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}
