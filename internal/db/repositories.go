package db

import "gorm.io/gorm"

type Repositories struct {
	Users         *UserRepository
	Profiles      *ProfileRepository
	Foods         *FoodRepository
	FoodLogs      *FoodLogRepository
	Posts         *PostRepository
	Challenges    *ChallengeRepository
	Subscriptions *SubscriptionRepository
	MealPlans     *MealPlanRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database),
		Profiles:      NewProfileRepository(database),
		Foods:         NewFoodRepository(database),
		FoodLogs:      NewFoodLogRepository(database),
		Posts:         NewPostRepository(database),
		Challenges:    NewChallengeRepository(database),
		Subscriptions: NewSubscriptionRepository(database),
		MealPlans:     NewMealPlanRepository(database),
	}
}
