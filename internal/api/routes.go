package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerPageRoutes(app, handler)
	registerAPIRoutes(app, handler)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)

	app.Get("/", handler.OptionalAuth, handler.Root)
	app.Get("/login", handler.OptionalAuth, handler.ShowLoginPage)
	app.Get("/register", handler.OptionalAuth, handler.ShowRegisterPage)
	app.Get("/onboarding", handler.AuthRequired, handler.ShowOnboardingPage)
	app.Get("/change-password", handler.AuthRequired, handler.ShowChangePasswordPage)
	app.Get("/dashboard", handler.AuthRequired, handler.OnboardingRequired, handler.ShowDashboardPage)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.RateLimit)

	auth := api.Group("/auth")
	auth.Get("/setup-status", handler.SetupStatus)
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Post("/logout-all", handler.AuthRequired, handler.LogoutAll)

	api.Post("/onboarding", handler.AuthRequired, handler.CompleteOnboarding)

	api.Get("/profile", handler.AuthRequired, handler.GetProfile)
	api.Put("/profile", handler.AuthRequired, handler.UpdateProfile)

	settings := api.Group("/settings", handler.AuthRequired)
	settings.Post("/change-password", handler.ChangePassword)
	settings.Delete("/delete-account", handler.DeleteAccount)

	api.Get("/foods", handler.SearchFoods)

	mealLogs := api.Group("/meal-logs", handler.AuthRequired)
	mealLogs.Get("", handler.ListMealLogs)
	mealLogs.Post("", handler.CreateMealLog)
	mealLogs.Delete("/:id", handler.DeleteMealLog)

	api.Get("/dashboard", handler.AuthRequired, handler.GetDashboard)

	api.Get("/community", handler.CommunityFeed)
	api.Post("/community", handler.AuthRequired, handler.CreatePost)
	api.Post("/community/like", handler.AuthRequired, handler.LikePost)
	api.Post("/community/comments", handler.AuthRequired, handler.CommentOnPost)

	challenges := api.Group("/challenges", handler.AuthRequired)
	challenges.Get("", handler.ListChallenges)
	challenges.Post("", handler.ApplyChallengeAction)

	api.Get("/subscriptions", handler.OptionalAuth, handler.SubscriptionOverview)
	api.Post("/subscriptions", handler.AuthRequired, handler.Subscribe)

	mealPlans := api.Group("/meal-plans", handler.AuthRequired)
	mealPlans.Get("", handler.ListMealPlans)
	mealPlans.Post("", handler.CreateMealPlan)

	api.Post("/meal-analysis", handler.AuthRequired, handler.AnalyzeMeal)
	api.Post("/ai", handler.AuthRequired, handler.AskAssistant)

	calculator := api.Group("/calculator")
	calculator.Post("/intake", handler.CalculateIntake)
	calculator.Post("/bmi", handler.CalculateBMI)

	api.Get("/admin/check", handler.AuthRequired, handler.AdminCheck)
	admin := api.Group("/admin", handler.AuthRequired, handler.AdminOnly)
	admin.Get("/stats", handler.AdminSiteStats)
	admin.Get("/users", handler.AdminListUsers)
	admin.Delete("/users/:id", handler.AdminDeleteUser)
	admin.Post("/users/:id/warn", handler.AdminWarnUser)
	admin.Get("/posts", handler.AdminListPosts)
	admin.Delete("/posts/:id", handler.AdminDeletePost)
	admin.Post("/foods", handler.CreateFood)
	admin.Post("/seed-foods", handler.SeedFoods)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
