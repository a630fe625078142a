package db

import (
	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChallengeRepository struct {
	database *gorm.DB
}

func NewChallengeRepository(database *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{database: database}
}

func (repo *ChallengeRepository) ListAll() ([]models.Challenge, error) {
	challenges := make([]models.Challenge, 0)
	if err := repo.database.Order("points DESC, id ASC").Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

func (repo *ChallengeRepository) ListByKind(kinds ...string) ([]models.Challenge, error) {
	challenges := make([]models.Challenge, 0)
	if err := repo.database.Where("kind IN ?", kinds).Order("id ASC").Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

func (repo *ChallengeRepository) FindByID(challengeID uint) (models.Challenge, error) {
	var challenge models.Challenge
	if err := repo.database.First(&challenge, challengeID).Error; err != nil {
		return models.Challenge{}, err
	}
	return challenge, nil
}

func (repo *ChallengeRepository) ListUserChallenges(userID uint) ([]models.UserChallenge, error) {
	entries := make([]models.UserChallenge, 0)
	if err := repo.database.Where("user_id = ?", userID).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindUserChallenge returns gorm.ErrRecordNotFound when the user never
// touched the challenge.
func (repo *ChallengeRepository) FindUserChallenge(userID uint, challengeID uint) (models.UserChallenge, error) {
	var entry models.UserChallenge
	if err := repo.database.
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&entry).Error; err != nil {
		return models.UserChallenge{}, err
	}
	return entry, nil
}

// SaveUserChallenge upserts on (user_id, challenge_id).
func (repo *ChallengeRepository) SaveUserChallenge(entry *models.UserChallenge) error {
	entry.ID = 0
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "progress", "updated_at"}),
	}).Create(entry).Error
}
