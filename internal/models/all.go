package models

// All lists every persisted model in dependency order for schema migration.
func All() []any {
	return []any{
		&User{},
		&Profile{},
		&Food{},
		&FoodLog{},
		&Post{},
		&Comment{},
		&Challenge{},
		&UserChallenge{},
		&SubscriptionPlan{},
		&Subscription{},
		&MealPlan{},
	}
}
