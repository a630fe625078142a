// Package catalog ships the reference food list used to seed the foods table.
package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed foods.yaml
var foodsYAML []byte

// MaxEntries caps how many rows a single seeding run may produce.
const MaxEntries = 500

// portionVariantBase limits portion variants to the first dishes of the list.
const portionVariantBase = 100

type Entry struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Calories float64 `yaml:"calories"`
	Protein  float64 `yaml:"protein"`
	Carbs    float64 `yaml:"carbs"`
	Fat      float64 `yaml:"fat"`
	Source   string  `yaml:"source"`
}

type Portion struct {
	Suffix     string  `yaml:"suffix"`
	Multiplier float64 `yaml:"multiplier"`
}

type document struct {
	Portions []Portion `yaml:"portions"`
	Foods    []Entry   `yaml:"foods"`
}

// Load parses the embedded catalog.
func Load() ([]Entry, []Portion, error) {
	return Parse(foodsYAML)
}

func Parse(raw []byte) ([]Entry, []Portion, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse food catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Foods))
	for index, entry := range doc.Foods {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, nil, fmt.Errorf("food catalog entry %d has no name", index)
		}
		if entry.Calories < 0 || entry.Protein < 0 || entry.Carbs < 0 || entry.Fat < 0 {
			return nil, nil, fmt.Errorf("food catalog entry %q has negative nutrients", name)
		}
		key := strings.ToLower(name)
		if _, exists := seen[key]; exists {
			return nil, nil, fmt.Errorf("food catalog entry %q is duplicated", name)
		}
		seen[key] = struct{}{}
		doc.Foods[index].Name = name
	}
	return doc.Foods, doc.Portions, nil
}

// Expand returns the base dishes followed by their portion variants, in a
// stable order, truncated to limit.
func Expand(entries []Entry, portions []Portion, limit int) []models.Food {
	if limit <= 0 {
		return []models.Food{}
	}

	foods := make([]models.Food, 0, limit)
	for _, entry := range entries {
		if len(foods) >= limit {
			return foods
		}
		foods = append(foods, entry.food("", 1))
	}

	for index, entry := range entries {
		if index >= portionVariantBase {
			break
		}
		for _, portion := range portions {
			if len(foods) >= limit {
				return foods
			}
			foods = append(foods, entry.food(portion.Suffix, portion.Multiplier))
		}
	}
	return foods
}

func (entry Entry) food(suffix string, multiplier float64) models.Food {
	source := strings.TrimSpace(entry.Source)
	if source == "" {
		source = models.FoodSourceFNRI
	}
	return models.Food{
		Name:     entry.Name + suffix,
		Calories: math.Round(entry.Calories * multiplier),
		Protein:  roundTenth(entry.Protein * multiplier),
		Carbs:    roundTenth(entry.Carbs * multiplier),
		Fat:      roundTenth(entry.Fat * multiplier),
		Source:   source,
	}
}

func roundTenth(value float64) float64 {
	return math.Round(value*10) / 10
}
