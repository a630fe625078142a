package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebalance/internal/nutrition"
	"github.com/terraincognita07/bitebalance/internal/services"
)

var errInvalidBody = errors.New("invalid input")

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return validate
}

// bindRequest parses the body into target and runs its validate tags. The
// returned message is safe to show to end users.
func bindRequest(c *fiber.Ctx, target any) (string, bool) {
	if err := c.BodyParser(target); err != nil {
		return errInvalidBody.Error(), false
	}
	if err := requestValidator.Struct(target); err != nil {
		return validationMessage(err), false
	}
	return "", true
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errInvalidBody.Error()
	}

	first := validationErrors[0]
	field := first.Field()
	switch first.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "invalid email"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, first.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(first.Param(), " ", ", "))
	case "gt", "gte", "lt", "lte":
		return field + " is out of range"
	default:
		return field + " is invalid"
	}
}

// rawFields is a flat view of a JSON object or form body. JSON numbers keep
// their literal text so "70", 70 and 70.0 all parse the same way.
type rawFields map[string]string

func readRawFields(c *fiber.Ctx) (rawFields, error) {
	fields := rawFields{}
	if isJSONBody(c) {
		body := bytes.TrimSpace(c.Body())
		if len(body) == 0 {
			return fields, nil
		}
		decoded := map[string]json.RawMessage{}
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, errInvalidBody
		}
		for key, value := range decoded {
			fields[key] = rawJSONScalar(value)
		}
		return fields, nil
	}

	c.Request().PostArgs().VisitAll(func(key []byte, value []byte) {
		fields[string(key)] = string(value)
	})
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for key, values := range form.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
	}
	return fields, nil
}

func rawJSONScalar(value json.RawMessage) string {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return ""
		}
		return text
	}
	return string(trimmed)
}

// first returns the first non-blank value among the given aliases.
func (fields rawFields) first(names ...string) (string, bool) {
	for _, name := range names {
		if value := strings.TrimSpace(fields[name]); value != "" {
			return value, true
		}
	}
	return "", false
}

func (fields rawFields) has(names ...string) bool {
	_, ok := fields.first(names...)
	return ok
}

func (fields rawFields) text(names ...string) *string {
	for _, name := range names {
		if value, ok := fields[name]; ok {
			trimmed := strings.TrimSpace(value)
			return &trimmed
		}
	}
	return nil
}

func parseFiniteNumber(field string, raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, nutrition.NewFieldError(field, "must be a number")
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, nutrition.NewFieldError(field, "must be a finite number")
	}
	return value, nil
}

func parseAgeField(raw string) (int, error) {
	value, err := parseFiniteNumber(nutrition.FieldAge, raw)
	if err != nil {
		return 0, err
	}
	return nutrition.ValidateAge(value)
}

func parseMeasurementField(field string, raw string) (float64, error) {
	value, err := parseFiniteNumber(field, raw)
	if err != nil {
		return 0, err
	}
	if err := nutrition.ValidateMeasurement(field, value); err != nil {
		return 0, err
	}
	return value, nil
}

// parseProfileInputs requires all six estimator inputs and checks them in
// wire order so the first bad field is the one reported.
func parseProfileInputs(fields rawFields) (nutrition.ProfileInputs, error) {
	inputs := nutrition.ProfileInputs{}

	rawAge, ok := fields.first(nutrition.FieldAge)
	if !ok {
		return inputs, nutrition.NewFieldError(nutrition.FieldAge, "is required")
	}
	age, err := parseAgeField(rawAge)
	if err != nil {
		return inputs, err
	}
	inputs.AgeYears = age

	sex, err := nutrition.ParseSex(fields[firstPresent(fields, nutrition.FieldSex, "gender")])
	if err != nil {
		return inputs, err
	}
	inputs.Sex = sex

	for _, measurement := range []struct {
		field   string
		aliases []string
		target  *float64
	}{
		{field: nutrition.FieldHeight, aliases: []string{nutrition.FieldHeight, "height"}, target: &inputs.HeightCm},
		{field: nutrition.FieldWeight, aliases: []string{nutrition.FieldWeight, "weight"}, target: &inputs.WeightKg},
	} {
		raw, ok := fields.first(measurement.aliases...)
		if !ok {
			return inputs, nutrition.NewFieldError(measurement.field, "is required")
		}
		value, err := parseMeasurementField(measurement.field, raw)
		if err != nil {
			return inputs, err
		}
		*measurement.target = value
	}

	level, err := nutrition.ParseActivityLevel(fields[nutrition.FieldActivityLevel])
	if err != nil {
		return inputs, err
	}
	inputs.ActivityLevel = level

	goal, err := nutrition.ParseGoal(fields[nutrition.FieldGoal])
	if err != nil {
		return inputs, err
	}
	inputs.Goal = goal

	return inputs, inputs.Validate()
}

func firstPresent(fields rawFields, names ...string) string {
	for _, name := range names {
		if strings.TrimSpace(fields[name]) != "" {
			return name
		}
	}
	return names[0]
}

// parseProfileUpdate reads whichever profile fields are present. Blank
// values are treated as absent for the estimator inputs.
func parseProfileUpdate(fields rawFields) (services.ProfileUpdate, error) {
	update := services.ProfileUpdate{
		Name:        fields.text("name", "fullName"),
		DietType:    fields.text("dietType"),
		Allergies:   fields.text("allergies"),
		Address:     fields.text("address"),
		CityCountry: fields.text("cityCountry"),
	}

	if raw, ok := fields.first(nutrition.FieldAge); ok {
		age, err := parseAgeField(raw)
		if err != nil {
			return update, err
		}
		update.Age = &age
	}
	if raw, ok := fields.first(nutrition.FieldSex, "gender"); ok {
		sex := nutrition.Sex(raw)
		update.Sex = &sex
	}
	if raw, ok := fields.first(nutrition.FieldHeight, "height"); ok {
		height, err := parseMeasurementField(nutrition.FieldHeight, raw)
		if err != nil {
			return update, err
		}
		update.HeightCm = &height
	}
	if raw, ok := fields.first(nutrition.FieldWeight, "weight"); ok {
		weight, err := parseMeasurementField(nutrition.FieldWeight, raw)
		if err != nil {
			return update, err
		}
		update.WeightKg = &weight
	}
	if raw, ok := fields.first(nutrition.FieldActivityLevel); ok {
		level := nutrition.ActivityLevel(raw)
		update.ActivityLevel = &level
	}
	if raw, ok := fields.first(nutrition.FieldGoal); ok {
		goal := nutrition.Goal(raw)
		update.Goal = &goal
	}

	return update, update.Validate()
}

func parseOptionalFloat(field string, raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := parseFiniteNumber(field, raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// respondInputError turns estimator validation failures into the
// {"error", "field"} shape and everything else into a plain 400.
func respondInputError(c *fiber.Ctx, err error) error {
	var fieldErr *nutrition.FieldError
	if errors.As(err, &fieldErr) {
		return fieldError(c, fiber.StatusBadRequest, fieldErr.Error(), fieldErr.Field)
	}
	return apiError(c, fiber.StatusBadRequest, err.Error())
}
