package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebalance/internal/catalog"
	"github.com/terraincognita07/bitebalance/internal/nutrition"
	"github.com/terraincognita07/bitebalance/internal/services"
)

type createFoodRequest struct {
	Name     string  `json:"name" form:"name" validate:"required"`
	Calories float64 `json:"calories" form:"calories"`
	Protein  float64 `json:"protein" form:"protein"`
	Carbs    float64 `json:"carbs" form:"carbs"`
	Fat      float64 `json:"fat" form:"fat"`
	Fiber    float64 `json:"fiber" form:"fiber"`
	Source   string  `json:"source" form:"source"`
}

func parseFoodSearch(c *fiber.Ctx) (services.FoodSearchParams, error) {
	params := services.FoodSearchParams{
		Text:   c.Query("q"),
		Source: c.Query("source"),
	}

	for _, paging := range []struct {
		name   string
		target *int
	}{
		{name: "page", target: &params.Page},
		{name: "limit", target: &params.Limit},
	} {
		raw := strings.TrimSpace(c.Query(paging.name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return params, nutrition.NewFieldError(paging.name, "must be a whole number")
		}
		*paging.target = value
	}

	for _, minimum := range []struct {
		name   string
		target **float64
	}{
		{name: "minCalories", target: &params.MinCalories},
		{name: "minProtein", target: &params.MinProtein},
		{name: "minCarbs", target: &params.MinCarbs},
		{name: "minFat", target: &params.MinFat},
	} {
		value, err := parseOptionalFloat(minimum.name, c.Query(minimum.name))
		if err != nil {
			return params, err
		}
		*minimum.target = value
	}
	return params, nil
}

func (handler *Handler) SearchFoods(c *fiber.Ctx) error {
	params, err := parseFoodSearch(c)
	if err != nil {
		return respondInputError(c, err)
	}
	page, err := handler.foods.Search(c.UserContext(), params)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to search foods")
	}
	return c.JSON(page)
}

func (handler *Handler) CreateFood(c *fiber.Ctx) error {
	request := createFoodRequest{}
	if message, ok := bindRequest(c, &request); !ok {
		return apiError(c, fiber.StatusBadRequest, message)
	}

	food, err := handler.foods.CreateFood(c.UserContext(), services.FoodInput{
		Name:     request.Name,
		Calories: request.Calories,
		Protein:  request.Protein,
		Carbs:    request.Carbs,
		Fat:      request.Fat,
		Fiber:    request.Fiber,
		Source:   request.Source,
	}, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create food")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": food})
}

// SeedFoods inserts the embedded catalog entries whose names are not stored yet.
func (handler *Handler) SeedFoods(c *fiber.Ctx) error {
	entries, portions, err := catalog.Load()
	if err != nil {
		return handler.internalError(c, err, "failed to load food catalog")
	}
	foods := catalog.Expand(entries, portions, catalog.MaxEntries)

	result, err := handler.foods.SeedCatalog(c.UserContext(), foods)
	if err != nil {
		return handler.internalError(c, err, "failed to seed foods")
	}
	handler.requestLog(c).WithField("created", result.Created).Info("food catalog seeded")
	return c.JSON(result)
}
