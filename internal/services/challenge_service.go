package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

const (
	ChallengeActionComplete  = "complete"
	ChallengeActionIncrement = "increment"

	proteinGoalLookbackDays = 30
)

var (
	ErrChallengeNotFound      = errors.New("challenge not found")
	ErrChallengeActionInvalid = errors.New("action must be complete or increment")
)

type ChallengeRepository interface {
	ListAll() ([]models.Challenge, error)
	ListByKind(kinds ...string) ([]models.Challenge, error)
	FindByID(challengeID uint) (models.Challenge, error)
	ListUserChallenges(userID uint) ([]models.UserChallenge, error)
	FindUserChallenge(userID uint, challengeID uint) (models.UserChallenge, error)
	SaveUserChallenge(entry *models.UserChallenge) error
}

type ChallengeUserRepository interface {
	ListIDs() ([]uint, error)
}

type ChallengeLogRepository interface {
	ListBetween(userID uint, from time.Time, to time.Time) ([]models.FoodLog, error)
}

type ChallengeView struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Kind        string `json:"kind"`
	Target      int    `json:"target"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
}

type ChallengeEvaluation struct {
	Users   int
	Updated int
}

type ChallengeService struct {
	challenges ChallengeRepository
	users      ChallengeUserRepository
	logs       ChallengeLogRepository
	profiles   ProfileRepository
}

func NewChallengeService(challenges ChallengeRepository, users ChallengeUserRepository, logs ChallengeLogRepository, profiles ProfileRepository) *ChallengeService {
	return &ChallengeService{challenges: challenges, users: users, logs: logs, profiles: profiles}
}

// List returns every challenge with the user's state; untouched challenges
// read as active with no progress.
func (service *ChallengeService) List(userID uint) ([]ChallengeView, error) {
	challenges, err := service.challenges.ListAll()
	if err != nil {
		return nil, err
	}
	states, err := service.challenges.ListUserChallenges(userID)
	if err != nil {
		return nil, err
	}

	byChallenge := make(map[uint]models.UserChallenge, len(states))
	for _, state := range states {
		byChallenge[state.ChallengeID] = state
	}

	views := make([]ChallengeView, 0, len(challenges))
	for _, challenge := range challenges {
		view := ChallengeView{
			ID:          challenge.ID,
			Title:       challenge.Title,
			Description: challenge.Description,
			Points:      challenge.Points,
			Kind:        challenge.Kind,
			Target:      challenge.Target,
			Status:      models.ChallengeStatusActive,
		}
		if state, ok := byChallenge[challenge.ID]; ok {
			view.Status = state.Status
			view.Progress = state.Progress
		}
		views = append(views, view)
	}
	return views, nil
}

// Apply records a manual action. Reaching the target completes the challenge.
func (service *ChallengeService) Apply(userID uint, challengeID uint, rawAction string, now time.Time) (models.UserChallenge, error) {
	action := strings.ToLower(strings.TrimSpace(rawAction))
	if action != ChallengeActionComplete && action != ChallengeActionIncrement {
		return models.UserChallenge{}, ErrChallengeActionInvalid
	}

	challenge, err := service.challenges.FindByID(challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.UserChallenge{}, ErrChallengeNotFound
		}
		return models.UserChallenge{}, err
	}

	entry, err := service.loadUserChallenge(userID, challengeID)
	if err != nil {
		return models.UserChallenge{}, err
	}

	switch action {
	case ChallengeActionComplete:
		entry.Status = models.ChallengeStatusCompleted
	case ChallengeActionIncrement:
		entry.Progress++
		if challenge.Target > 0 && entry.Progress >= challenge.Target {
			entry.Status = models.ChallengeStatusCompleted
		}
	}
	entry.UpdatedAt = now.UTC()

	if err := service.challenges.SaveUserChallenge(&entry); err != nil {
		return models.UserChallenge{}, err
	}
	return entry, nil
}

func (service *ChallengeService) loadUserChallenge(userID uint, challengeID uint) (models.UserChallenge, error) {
	entry, err := service.challenges.FindUserChallenge(userID, challengeID)
	if err == nil {
		return entry, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserChallenge{
			UserID:      userID,
			ChallengeID: challengeID,
			Status:      models.ChallengeStatusActive,
		}, nil
	}
	return models.UserChallenge{}, err
}

// EvaluateAll recomputes progress of the automatic challenge kinds for every
// user. Completed challenges are never reopened. A failure for one user does
// not stop the others; all failures are returned joined.
func (service *ChallengeService) EvaluateAll(now time.Time, location *time.Location) (ChallengeEvaluation, error) {
	challenges, err := service.challenges.ListByKind(models.ChallengeKindLoggingStreak, models.ChallengeKindProteinGoal)
	if err != nil {
		return ChallengeEvaluation{}, err
	}
	userIDs, err := service.users.ListIDs()
	if err != nil {
		return ChallengeEvaluation{}, err
	}

	report := ChallengeEvaluation{Users: len(userIDs)}
	if len(challenges) == 0 {
		return report, nil
	}

	var failures []error
	for _, userID := range userIDs {
		updated, err := service.evaluateUser(userID, challenges, now, location)
		report.Updated += updated
		if err != nil {
			failures = append(failures, fmt.Errorf("user %d: %w", userID, err))
		}
	}
	return report, errors.Join(failures...)
}

func (service *ChallengeService) evaluateUser(userID uint, challenges []models.Challenge, now time.Time, location *time.Location) (int, error) {
	if location == nil {
		location = time.UTC
	}
	localNow := now.In(location)
	today := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
	start := today.AddDate(0, 0, -(proteinGoalLookbackDays - 1))

	logs, err := service.logs.ListBetween(userID, start, today.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	daily := dailyTotals(logs, location)

	proteinTarget := 0
	if profile, err := service.profiles.FindByUserID(userID); err == nil {
		proteinTarget = profile.ProteinGrams
	}

	updated := 0
	for _, challenge := range challenges {
		var progress int
		switch challenge.Kind {
		case models.ChallengeKindLoggingStreak:
			progress = loggingStreak(daily, today)
		case models.ChallengeKindProteinGoal:
			progress = proteinGoalDays(daily, proteinTarget)
		default:
			continue
		}

		entry, err := service.loadUserChallenge(userID, challenge.ID)
		if err != nil {
			return updated, err
		}
		if entry.Status == models.ChallengeStatusCompleted {
			continue
		}
		if challenge.Target > 0 && progress > challenge.Target {
			progress = challenge.Target
		}
		status := models.ChallengeStatusActive
		if challenge.Target > 0 && progress >= challenge.Target {
			status = models.ChallengeStatusCompleted
		}
		if entry.ID != 0 && entry.Progress == progress && entry.Status == status {
			continue
		}
		if entry.ID == 0 && progress == 0 {
			continue
		}

		entry.Progress = progress
		entry.Status = status
		entry.UpdatedAt = now.UTC()
		if err := service.challenges.SaveUserChallenge(&entry); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func dailyTotals(logs []models.FoodLog, location *time.Location) map[string]*nutrientSums {
	daily := make(map[string]*nutrientSums)
	for _, entry := range logs {
		key := entry.LoggedAt.In(location).Format("2006-01-02")
		sums, ok := daily[key]
		if !ok {
			sums = &nutrientSums{}
			daily[key] = sums
		}
		sums.add(entry)
	}
	return daily
}

// loggingStreak counts consecutive logged days ending today, or ending
// yesterday while today has no entries yet.
func loggingStreak(daily map[string]*nutrientSums, today time.Time) int {
	day := today
	if _, ok := daily[day.Format("2006-01-02")]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := daily[day.Format("2006-01-02")]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

func proteinGoalDays(daily map[string]*nutrientSums, target int) int {
	if target <= 0 {
		return 0
	}
	days := 0
	for _, sums := range daily {
		if sums.rounded().Protein >= target {
			days++
		}
	}
	return days
}
