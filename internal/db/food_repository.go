package db

import (
	"strings"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FoodRepository struct {
	database *gorm.DB
}

func NewFoodRepository(database *gorm.DB) *FoodRepository {
	return &FoodRepository{database: database}
}

func (repo *FoodRepository) Search(query models.FoodQuery) ([]models.Food, int64, error) {
	scope := repo.database.Model(&models.Food{})
	if text := strings.ToLower(strings.TrimSpace(query.Text)); text != "" {
		scope = scope.Where("lower(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(text)+"%")
	}
	if source := strings.TrimSpace(query.Source); source != "" {
		scope = scope.Where("source = ?", source)
	}
	minimums := []struct {
		column string
		value  *float64
	}{
		{column: "calories", value: query.MinCalories},
		{column: "protein", value: query.MinProtein},
		{column: "carbs", value: query.MinCarbs},
		{column: "fat", value: query.MinFat},
	}
	for _, minimum := range minimums {
		if minimum.value != nil {
			scope = scope.Where(minimum.column+" >= ?", *minimum.value)
		}
	}

	scope = scope.Session(&gorm.Session{})

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	foods := make([]models.Food, 0)
	if err := scope.Order("name ASC").Offset(query.Offset).Limit(query.Limit).Find(&foods).Error; err != nil {
		return nil, 0, err
	}
	return foods, total, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func (repo *FoodRepository) FindByID(foodID uint) (models.Food, error) {
	var food models.Food
	if err := repo.database.First(&food, foodID).Error; err != nil {
		return models.Food{}, err
	}
	return food, nil
}

func (repo *FoodRepository) ExistsByName(name string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Food{}).
		Where("lower(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *FoodRepository) Count() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Food{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *FoodRepository) Create(food *models.Food) error {
	return repo.database.Create(food).Error
}

// CreateMissing inserts foods whose name is not taken yet and reports how
// many rows were written.
func (repo *FoodRepository) CreateMissing(foods []models.Food) (int64, error) {
	if len(foods) == 0 {
		return 0, nil
	}
	result := repo.database.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		CreateInBatches(&foods, 100)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
