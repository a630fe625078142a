package db

import (
	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var profileUpsertColumns = []string{
	"age",
	"sex",
	"height_cm",
	"weight_kg",
	"activity_level",
	"goal",
	"diet_type",
	"allergies",
	"address",
	"city_country",
	"daily_calories",
	"protein_grams",
	"fat_grams",
	"carb_grams",
	"onboarding_completed",
	"updated_at",
}

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) FindByUserID(userID uint) (models.Profile, error) {
	var profile models.Profile
	if err := repo.database.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// Upsert writes the whole profile row keyed by user_id. The primary key is
// cleared so the only possible conflict is the user_id one.
func (repo *ProfileRepository) Upsert(profile *models.Profile) error {
	return upsertProfile(repo.database, profile)
}

func upsertProfile(database *gorm.DB, profile *models.Profile) error {
	profile.ID = 0
	return database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(profileUpsertColumns),
	}).Create(profile).Error
}

func (repo *ProfileRepository) CountCompleted() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Profile{}).Where("onboarding_completed = ?", true).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
