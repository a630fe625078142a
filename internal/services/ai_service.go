package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/terraincognita07/bitebalance/internal/ai"
)

const (
	maxPromptLength   = 4000
	maxMealItems      = 50
	aiKindMealAnalyze = "meal_analysis"
	aiKindAssistant   = "assistant"
)

var (
	ErrAINotConfigured   = ai.ErrNotConfigured
	ErrMealItemsRequired = errors.New("Meal items are required")
	ErrMealItemInvalid   = errors.New("each meal item needs a name, a positive quantity and non-negative calories")
	ErrPromptRequired    = errors.New("Prompt is required")
	ErrPromptTooLong     = errors.New("prompt is too long")
)

const mealAnalysisInstructions = `You are a nutrition impact analyst. Analyze the meal composition and provide a brief, accessible analysis.

Format your response as JSON with exactly these fields:
{
  "cause": "Brief 1-sentence analysis of key nutritional issue",
  "result": "Brief 2-sentence description of health impact and symptoms"
}

Be specific about macros provided. Keep language accessible and actionable. Focus on practical health implications.`

type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type AIObserver interface {
	ObserveAIRequest(kind string, success bool)
}

type MealItem struct {
	Name     string
	Quantity float64
	Calories float64
	Protein  *float64
	Carbs    *float64
	Fat      *float64
}

type MealAnalysisRequest struct {
	MealType      string
	Items         []MealItem
	TotalServings float64
}

type AIService struct {
	generator TextGenerator
	observer  AIObserver
}

// NewAIService accepts a nil generator; every call then fails with
// ErrAINotConfigured.
func NewAIService(generator TextGenerator, observer AIObserver) *AIService {
	return &AIService{generator: generator, observer: observer}
}

func (service *AIService) Configured() bool {
	return service.generator != nil
}

func (service *AIService) AnalyzeMeal(ctx context.Context, request MealAnalysisRequest) (ai.MealInsight, error) {
	if len(request.Items) == 0 {
		return ai.MealInsight{}, ErrMealItemsRequired
	}
	if len(request.Items) > maxMealItems {
		return ai.MealInsight{}, ErrMealItemInvalid
	}
	for _, item := range request.Items {
		if strings.TrimSpace(item.Name) == "" || !(item.Quantity > 0) || item.Calories < 0 || math.IsInf(item.Calories, 0) {
			return ai.MealInsight{}, ErrMealItemInvalid
		}
	}
	if !service.Configured() {
		return ai.MealInsight{}, ErrAINotConfigured
	}

	reply, err := service.generate(ctx, aiKindMealAnalyze, mealAnalysisInstructions+"\n\n"+MealAnalysisPrompt(request))
	if err != nil {
		return ai.MealInsight{}, err
	}
	return ai.ParseMealInsight(reply), nil
}

// MealAnalysisPrompt lists each item with its macros and the meal totals.
func MealAnalysisPrompt(request MealAnalysisRequest) string {
	mealType := strings.TrimSpace(request.MealType)
	if mealType == "" {
		mealType = "meal"
	}
	servings := request.TotalServings
	if !(servings > 0) {
		servings = 1
	}

	var totalCalories, totalProtein, totalCarbs, totalFat float64
	lines := make([]string, 0, len(request.Items))
	for _, item := range request.Items {
		parts := []string{strings.TrimSpace(item.Name), formatNumber(item.Quantity) + " serving(s)"}
		if item.Protein != nil {
			parts = append(parts, formatNumber(*item.Protein)+"g protein")
			totalProtein += *item.Protein * item.Quantity
		}
		if item.Carbs != nil {
			parts = append(parts, formatNumber(*item.Carbs)+"g carbs")
			totalCarbs += *item.Carbs * item.Quantity
		}
		if item.Fat != nil {
			parts = append(parts, formatNumber(*item.Fat)+"g fat")
			totalFat += *item.Fat * item.Quantity
		}
		parts = append(parts, formatNumber(item.Calories)+" calories")
		totalCalories += item.Calories * item.Quantity
		lines = append(lines, "- "+strings.Join(parts, ", "))
	}

	return fmt.Sprintf(
		"Analyze this %s meal:\n\n%s\n\nTotal: %s calories, %.1fg protein, %.1fg carbs, %.1fg fat\nTotal servings: %s\n\nProvide your analysis in the requested JSON format.",
		mealType,
		strings.Join(lines, "\n"),
		formatNumber(totalCalories),
		totalProtein,
		totalCarbs,
		totalFat,
		formatNumber(servings),
	)
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Ask forwards a free-form question, prefixed with optional context.
func (service *AIService) Ask(ctx context.Context, prompt string, extraContext string) (string, error) {
	question := strings.TrimSpace(prompt)
	if question == "" {
		return "", ErrPromptRequired
	}
	extra := strings.TrimSpace(extraContext)
	if len([]rune(question))+len([]rune(extra)) > maxPromptLength {
		return "", ErrPromptTooLong
	}
	if !service.Configured() {
		return "", ErrAINotConfigured
	}

	fullPrompt := question
	if extra != "" {
		fullPrompt = extra + "\n\nUser question: " + question
	}
	return service.generate(ctx, aiKindAssistant, fullPrompt)
}

func (service *AIService) generate(ctx context.Context, kind string, prompt string) (string, error) {
	reply, err := service.generator.Generate(ctx, prompt)
	if service.observer != nil {
		service.observer.ObserveAIRequest(kind, err == nil)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", kind, err)
	}
	return reply, nil
}
