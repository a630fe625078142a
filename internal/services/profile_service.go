package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"github.com/terraincognita07/bitebalance/internal/nutrition"
	"gorm.io/gorm"
)

var ErrProfileTextTooLong = errors.New("profile text is too long")

const (
	maxProfileTextLength = 500
	maxDisplayNameLength = 120
)

// EstimateObserver is notified after every successful recompute.
type EstimateObserver interface {
	ObserveEstimate(goal string)
}

type ProfileRepository interface {
	FindByUserID(userID uint) (models.Profile, error)
	Upsert(profile *models.Profile) error
}

type ProfileUserRepository interface {
	UpdateName(userID uint, name string) error
	UpdateNameWithProfile(userID uint, name string, profile *models.Profile) error
}

// ProfileUpdate is a partial write. Nil fields keep their stored value.
type ProfileUpdate struct {
	Name          *string
	Age           *int
	Sex           *nutrition.Sex
	HeightCm      *float64
	WeightKg      *float64
	ActivityLevel *nutrition.ActivityLevel
	Goal          *nutrition.Goal
	DietType      *string
	Allergies     *string
	Address       *string
	CityCountry   *string
}

// IsEmpty reports whether no profile column would change. Name lives on the
// user row and is not counted.
func (update ProfileUpdate) IsEmpty() bool {
	return update.Age == nil &&
		update.Sex == nil &&
		update.HeightCm == nil &&
		update.WeightKg == nil &&
		update.ActivityLevel == nil &&
		update.Goal == nil &&
		update.DietType == nil &&
		update.Allergies == nil &&
		update.Address == nil &&
		update.CityCountry == nil
}

// Validate checks the provided estimator inputs in wire order.
func (update ProfileUpdate) Validate() error {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return ErrNameRequired
		}
		if len([]rune(name)) > maxDisplayNameLength {
			return ErrProfileTextTooLong
		}
	}
	if update.Age != nil {
		if _, err := nutrition.ValidateAge(float64(*update.Age)); err != nil {
			return err
		}
	}
	if update.Sex != nil {
		if _, err := nutrition.ParseSex(string(*update.Sex)); err != nil {
			return err
		}
	}
	if update.HeightCm != nil {
		if err := nutrition.ValidateMeasurement(nutrition.FieldHeight, *update.HeightCm); err != nil {
			return err
		}
	}
	if update.WeightKg != nil {
		if err := nutrition.ValidateMeasurement(nutrition.FieldWeight, *update.WeightKg); err != nil {
			return err
		}
	}
	if update.ActivityLevel != nil {
		if _, err := nutrition.ParseActivityLevel(string(*update.ActivityLevel)); err != nil {
			return err
		}
	}
	if update.Goal != nil {
		if _, err := nutrition.ParseGoal(string(*update.Goal)); err != nil {
			return err
		}
	}
	for _, text := range []*string{update.DietType, update.Allergies, update.Address, update.CityCountry} {
		if text != nil && len([]rune(strings.TrimSpace(*text))) > maxProfileTextLength {
			return ErrProfileTextTooLong
		}
	}
	return nil
}

// ProfilePolicy merges partial updates into a profile and recomputes the
// stored targets whenever all six estimator inputs are known.
type ProfilePolicy struct {
	nutrition nutrition.Policy
	observer  EstimateObserver
}

func NewProfilePolicy(policy nutrition.Policy, observer EstimateObserver) *ProfilePolicy {
	return &ProfilePolicy{nutrition: policy, observer: observer}
}

func (policy *ProfilePolicy) Nutrition() nutrition.Policy {
	return policy.nutrition
}

// Apply returns nil when the inputs are still incomplete.
func (policy *ProfilePolicy) Apply(profile *models.Profile, update ProfileUpdate) (*nutrition.EstimateResult, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	if update.Age != nil {
		age := *update.Age
		profile.Age = &age
	}
	if update.Sex != nil {
		sex, _ := nutrition.ParseSex(string(*update.Sex))
		profile.Sex = string(sex)
	}
	if update.HeightCm != nil {
		height := *update.HeightCm
		profile.HeightCm = &height
	}
	if update.WeightKg != nil {
		weight := *update.WeightKg
		profile.WeightKg = &weight
	}
	if update.ActivityLevel != nil {
		level, _ := nutrition.ParseActivityLevel(string(*update.ActivityLevel))
		profile.ActivityLevel = string(level)
	}
	if update.Goal != nil {
		goal, _ := nutrition.ParseGoal(string(*update.Goal))
		profile.Goal = string(goal)
	}
	assignTrimmed(&profile.DietType, update.DietType)
	assignTrimmed(&profile.Allergies, update.Allergies)
	assignTrimmed(&profile.Address, update.Address)
	assignTrimmed(&profile.CityCountry, update.CityCountry)

	inputs, complete := ProfileInputsFrom(*profile)
	if !complete {
		return nil, nil
	}

	result, err := policy.nutrition.Estimate(inputs)
	if err != nil {
		return nil, err
	}
	profile.DailyCalories = result.DailyCalories
	profile.ProteinGrams = result.Macros.ProteinGrams
	profile.FatGrams = result.Macros.FatGrams
	profile.CarbGrams = result.Macros.CarbGrams
	if policy.observer != nil {
		policy.observer.ObserveEstimate(string(inputs.Goal))
	}
	return &result, nil
}

// ProfileInputsFrom reports false while any of the six inputs is missing.
func ProfileInputsFrom(profile models.Profile) (nutrition.ProfileInputs, bool) {
	if profile.Age == nil || profile.HeightCm == nil || profile.WeightKg == nil {
		return nutrition.ProfileInputs{}, false
	}
	if profile.Sex == "" || profile.ActivityLevel == "" || profile.Goal == "" {
		return nutrition.ProfileInputs{}, false
	}
	return nutrition.ProfileInputs{
		AgeYears:      *profile.Age,
		Sex:           nutrition.Sex(profile.Sex),
		HeightCm:      *profile.HeightCm,
		WeightKg:      *profile.WeightKg,
		ActivityLevel: nutrition.ActivityLevel(profile.ActivityLevel),
		Goal:          nutrition.Goal(profile.Goal),
	}, true
}

func assignTrimmed(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}

type OnboardingExtras struct {
	DietType  string
	Allergies string
}

type ProfileService struct {
	profiles ProfileRepository
	users    ProfileUserRepository
	policy   *ProfilePolicy
}

func NewProfileService(profiles ProfileRepository, users ProfileUserRepository, policy *ProfilePolicy) *ProfileService {
	if policy == nil {
		policy = NewProfilePolicy(nutrition.DefaultPolicy, nil)
	}
	return &ProfileService{profiles: profiles, users: users, policy: policy}
}

// FindProfile returns nil when the user has not saved a profile yet.
func (service *ProfileService) FindProfile(userID uint) (*models.Profile, error) {
	profile, err := service.profiles.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// CompleteOnboarding stores a full set of validated inputs, computes the
// estimate and marks onboarding complete.
func (service *ProfileService) CompleteOnboarding(userID uint, inputs nutrition.ProfileInputs, extras OnboardingExtras, now time.Time) (models.Profile, nutrition.EstimateResult, error) {
	if err := inputs.Validate(); err != nil {
		return models.Profile{}, nutrition.EstimateResult{}, err
	}

	profile, err := service.loadOrNew(userID)
	if err != nil {
		return models.Profile{}, nutrition.EstimateResult{}, err
	}

	update := ProfileUpdate{
		Age:           &inputs.AgeYears,
		Sex:           &inputs.Sex,
		HeightCm:      &inputs.HeightCm,
		WeightKg:      &inputs.WeightKg,
		ActivityLevel: &inputs.ActivityLevel,
		Goal:          &inputs.Goal,
		DietType:      &extras.DietType,
		Allergies:     &extras.Allergies,
	}
	result, err := service.policy.Apply(&profile, update)
	if err != nil {
		return models.Profile{}, nutrition.EstimateResult{}, err
	}

	profile.OnboardingCompleted = true
	profile.UpdatedAt = now.UTC()
	if err := service.profiles.Upsert(&profile); err != nil {
		return models.Profile{}, nutrition.EstimateResult{}, err
	}
	return profile, *result, nil
}

// Update merges a partial update. The estimate is recomputed on every write
// that leaves all six inputs present.
func (service *ProfileService) Update(userID uint, update ProfileUpdate, now time.Time) (models.Profile, *nutrition.EstimateResult, error) {
	if err := update.Validate(); err != nil {
		return models.Profile{}, nil, err
	}

	var name *string
	if update.Name != nil && service.users != nil {
		trimmed := strings.TrimSpace(*update.Name)
		name = &trimmed
	}

	profile, err := service.loadOrNew(userID)
	if err != nil {
		return models.Profile{}, nil, err
	}
	if update.IsEmpty() && profile.ID != 0 {
		if name != nil {
			if err := service.users.UpdateName(userID, *name); err != nil {
				return models.Profile{}, nil, err
			}
		}
		return profile, nil, nil
	}

	result, err := service.policy.Apply(&profile, update)
	if err != nil {
		return models.Profile{}, nil, err
	}
	if result != nil {
		profile.OnboardingCompleted = true
	}
	profile.UpdatedAt = now.UTC()
	if name != nil {
		err = service.users.UpdateNameWithProfile(userID, *name, &profile)
	} else {
		err = service.profiles.Upsert(&profile)
	}
	if err != nil {
		return models.Profile{}, nil, err
	}
	return profile, result, nil
}

func (service *ProfileService) loadOrNew(userID uint) (models.Profile, error) {
	profile, err := service.profiles.FindByUserID(userID)
	if err == nil {
		return profile, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{UserID: userID}, nil
	}
	return models.Profile{}, err
}
