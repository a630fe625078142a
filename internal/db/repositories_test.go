package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

func newRepositoriesForTest(t *testing.T) (*Repositories, *gorm.DB) {
	t.Helper()
	database := openSQLiteForTest(t, filepath.Join(t.TempDir(), "bitebalance-repos.db"))
	return NewRepositories(database), database
}

func createRepositoryTestUser(t *testing.T, repos *Repositories, email string) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		Username:     email[:len(email)-len("@example.com")],
		Name:         "Test User",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	if err := repos.Users.Create(&user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestProfileUpsertReplacesExistingRow(t *testing.T) {
	repos, _ := newRepositoriesForTest(t)
	user := createRepositoryTestUser(t, repos, "profile@example.com")

	age := 30
	first := models.Profile{UserID: user.ID, Age: &age, Goal: "maintain", DailyCalories: 2556}
	if err := repos.Profiles.Upsert(&first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := models.Profile{UserID: user.ID, Age: &age, Goal: "lose", DailyCalories: 2056, OnboardingCompleted: true}
	if err := repos.Profiles.Upsert(&second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	stored, err := repos.Profiles.FindByUserID(user.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if stored.Goal != "lose" || stored.DailyCalories != 2056 || !stored.OnboardingCompleted {
		t.Fatalf("expected upserted profile values, got %+v", stored)
	}

	var rows int64
	if err := repos.Profiles.database.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected exactly one profile row, got %d", rows)
	}
}

func TestFoodSearchFiltersAndPaginates(t *testing.T) {
	repos, _ := newRepositoriesForTest(t)

	minProtein := 6.0
	items, total, err := repos.Foods.Search(models.FoodQuery{MinProtein: &minProtein, Limit: 10})
	if err != nil {
		t.Fatalf("search foods: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 high protein foods, got total=%d items=%d", total, len(items))
	}
	if items[0].Name != "Chicken breast (100g)" || items[1].Name != "Egg (1 large)" {
		t.Fatalf("expected name ordering, got %q, %q", items[0].Name, items[1].Name)
	}

	items, total, err = repos.Foods.Search(models.FoodQuery{Text: "RICE", Limit: 10})
	if err != nil {
		t.Fatalf("search foods by text: %v", err)
	}
	if total != 1 || items[0].Name != "White rice (1 cup)" {
		t.Fatalf("expected case-insensitive name match, got total=%d items=%+v", total, items)
	}

	items, total, err = repos.Foods.Search(models.FoodQuery{Offset: 3, Limit: 2})
	if err != nil {
		t.Fatalf("search foods page 2: %v", err)
	}
	if total != 4 || len(items) != 1 {
		t.Fatalf("expected last page with one item of four, got total=%d items=%d", total, len(items))
	}
}

func TestFoodCreateMissingSkipsExistingNames(t *testing.T) {
	repos, _ := newRepositoriesForTest(t)

	created, err := repos.Foods.CreateMissing([]models.Food{
		{Name: "Banana (1 medium)", Calories: 105, Source: models.FoodSourceFNRI},
		{Name: "Puto", Calories: 150, Source: models.FoodSourceFNRI},
	})
	if err != nil {
		t.Fatalf("create missing foods: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 created food, got %d", created)
	}

	exists, err := repos.Foods.ExistsByName(" puto ")
	if err != nil || !exists {
		t.Fatalf("expected Puto to exist, exists=%v err=%v", exists, err)
	}
}

func TestSubscriptionSwitchCancelsPreviousPlan(t *testing.T) {
	repos, database := newRepositoriesForTest(t)
	user := createRepositoryTestUser(t, repos, "subscriber@example.com")

	free, err := repos.Subscriptions.FindPlanByName("free")
	if err != nil {
		t.Fatalf("find free plan: %v", err)
	}
	pro, err := repos.Subscriptions.FindPlanByName("Pro")
	if err != nil {
		t.Fatalf("find pro plan: %v", err)
	}

	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	if _, err := repos.Subscriptions.Switch(user.ID, free.ID, now); err != nil {
		t.Fatalf("subscribe free: %v", err)
	}
	current, err := repos.Subscriptions.Switch(user.ID, pro.ID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("subscribe pro: %v", err)
	}
	if current.Plan.Name != "Pro" || current.Status != models.SubscriptionStatusActive {
		t.Fatalf("expected active Pro subscription, got %+v", current)
	}

	var canceled models.Subscription
	if err := database.Where("user_id = ? AND plan_id = ?", user.ID, free.ID).First(&canceled).Error; err != nil {
		t.Fatalf("load canceled subscription: %v", err)
	}
	if canceled.Status != models.SubscriptionStatusCanceled || canceled.EndsAt == nil {
		t.Fatalf("expected canceled subscription with end date, got %+v", canceled)
	}

	active, err := repos.Subscriptions.FindActive(user.ID)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if active.ID != current.ID {
		t.Fatalf("expected active subscription %d, got %d", current.ID, active.ID)
	}
}

func TestDeleteAccountAndRelatedDataRemovesOwnedRows(t *testing.T) {
	repos, database := newRepositoriesForTest(t)
	user := createRepositoryTestUser(t, repos, "leaver@example.com")
	other := createRepositoryTestUser(t, repos, "stayer@example.com")

	if err := repos.Profiles.Upsert(&models.Profile{UserID: user.ID}); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	post := models.Post{UserID: user.ID, Body: "hello"}
	if err := repos.Posts.Create(&post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := repos.Posts.CreateComment(&models.Comment{PostID: post.ID, UserID: other.ID, Body: "hi"}); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if err := repos.FoodLogs.Create(&models.FoodLog{UserID: user.ID, FoodID: 1, Quantity: 1, MealType: models.MealLunch, LoggedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("create food log: %v", err)
	}

	if err := repos.Users.DeleteAccountAndRelatedData(user.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	for _, model := range []any{&models.Profile{}, &models.Post{}, &models.FoodLog{}} {
		var count int64
		if err := database.Model(model).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if count != 0 {
			t.Fatalf("expected %T rows to be deleted, got %d", model, count)
		}
	}

	var comments int64
	if err := database.Model(&models.Comment{}).Count(&comments).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if comments != 0 {
		t.Fatalf("expected comments on deleted posts to be removed, got %d", comments)
	}

	if err := repos.Users.DeleteAccountAndRelatedData(user.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestBumpSessionVersionIncrements(t *testing.T) {
	repos, _ := newRepositoriesForTest(t)
	user := createRepositoryTestUser(t, repos, "sessions@example.com")
	before, err := repos.Users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}

	version, err := repos.Users.BumpSessionVersion(user.ID)
	if err != nil {
		t.Fatalf("bump session version: %v", err)
	}
	if version != before.SessionVersion+1 {
		t.Fatalf("expected session version %d, got %d", before.SessionVersion+1, version)
	}
}

func TestUpdateNameWithProfileRollsBackOnProfileFailure(t *testing.T) {
	repos, database := newRepositoriesForTest(t)
	user := createRepositoryTestUser(t, repos, "rollback@example.com")

	age := 41
	if err := repos.Users.UpdateNameWithProfile(user.ID, "Renamed", &models.Profile{Age: &age}); err != nil {
		t.Fatalf("combined update: %v", err)
	}
	stored, err := repos.Users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	profile, err := repos.Profiles.FindByUserID(user.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if stored.Name != "Renamed" || profile.Age == nil || *profile.Age != 41 {
		t.Fatalf("expected both writes, got name=%q profile=%+v", stored.Name, profile)
	}

	err = database.Callback().Create().Before("gorm:create").Register("test:fail_profiles", func(tx *gorm.DB) {
		if tx.Statement.Table == "profiles" {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if err := repos.Users.UpdateNameWithProfile(user.ID, "Partial", &models.Profile{Age: &age}); err == nil {
		t.Fatal("expected profile failure to surface")
	}
	stored, err = repos.Users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.Name != "Renamed" {
		t.Fatalf("expected rename to roll back, got %q", stored.Name)
	}
}
