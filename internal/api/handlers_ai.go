package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebalance/internal/nutrition"
	"github.com/terraincognita07/bitebalance/internal/services"
)

type mealItemRequest struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Calories float64  `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

type mealAnalysisRequest struct {
	MealType      string            `json:"mealType"`
	Items         []mealItemRequest `json:"items"`
	TotalServings float64           `json:"totalServings"`
}

type askRequest struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context"`
}

func (handler *Handler) AnalyzeMeal(c *fiber.Ctx) error {
	request := mealAnalysisRequest{}
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, errInvalidBody.Error())
	}

	items := make([]services.MealItem, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, services.MealItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Calories: item.Calories,
			Protein:  item.Protein,
			Carbs:    item.Carbs,
			Fat:      item.Fat,
		})
	}

	insight, err := handler.ai.AnalyzeMeal(c.UserContext(), services.MealAnalysisRequest{
		MealType:      request.MealType,
		Items:         items,
		TotalServings: request.TotalServings,
	})
	if err != nil {
		return handler.respondAIError(c, err)
	}
	return c.JSON(insight)
}

func (handler *Handler) AskAssistant(c *fiber.Ctx) error {
	request := askRequest{}
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, errInvalidBody.Error())
	}
	reply, err := handler.ai.Ask(c.UserContext(), request.Prompt, request.Context)
	if err != nil {
		return handler.respondAIError(c, err)
	}
	return c.JSON(fiber.Map{"response": reply})
}

// respondAIError reports provider failures as 502 so they are not mistaken
// for our own faults.
func (handler *Handler) respondAIError(c *fiber.Ctx, err error) error {
	if _, known := serviceErrorStatus(err); known {
		return handler.respondServiceError(c, err, "AI request failed")
	}
	handler.requestLog(c).WithError(err).Warn("AI request failed")
	return apiError(c, fiber.StatusBadGateway, "AI request failed")
}

// CalculateIntake runs the estimator on the submitted inputs without
// touching any stored profile.
func (handler *Handler) CalculateIntake(c *fiber.Ctx) error {
	fields, err := readRawFields(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	inputs, err := parseProfileInputs(fields)
	if err != nil {
		return respondInputError(c, err)
	}
	result, err := handler.nutrition.Estimate(inputs)
	if err != nil {
		return respondInputError(c, err)
	}
	return c.JSON(result)
}

func (handler *Handler) CalculateBMI(c *fiber.Ctx) error {
	fields, err := readRawFields(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	var measurements [2]float64
	for index, measurement := range []struct {
		field   string
		aliases []string
	}{
		{field: nutrition.FieldHeight, aliases: []string{nutrition.FieldHeight, "height"}},
		{field: nutrition.FieldWeight, aliases: []string{nutrition.FieldWeight, "weight"}},
	} {
		raw, ok := fields.first(measurement.aliases...)
		if !ok {
			return respondInputError(c, nutrition.NewFieldError(measurement.field, "is required"))
		}
		value, err := parseFiniteNumber(measurement.field, raw)
		if err != nil {
			return respondInputError(c, err)
		}
		measurements[index] = value
	}

	bmi, err := nutrition.BMI(measurements[0], measurements[1])
	if err != nil {
		return respondInputError(c, err)
	}
	return c.JSON(fiber.Map{"bmi": bmi, "category": nutrition.BMICategory(bmi)})
}
