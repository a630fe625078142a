package api

import (
	"errors"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebalance/internal/db"
	"github.com/terraincognita07/bitebalance/internal/mailer"
	"github.com/terraincognita07/bitebalance/internal/metrics"
	"github.com/terraincognita07/bitebalance/internal/nutrition"
	"github.com/terraincognita07/bitebalance/internal/services"
	"gorm.io/gorm"
)

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour

	loginAttemptsLimit  = 8
	loginAttemptsWindow = 15 * time.Minute
)

// Options carries everything the handler needs besides the database. Zero
// values pick safe defaults: no cache, no AI provider, log-only mail.
type Options struct {
	SecretKey      string
	Location       *time.Location
	CookieSecure   bool
	Nutrition      *nutrition.Policy
	AdminEmails    map[string]struct{}
	Logger         logrus.FieldLogger
	Metrics        *metrics.Recorder
	FoodCache      services.FoodCache
	Mailer         services.WarningMailer
	TextGenerator  services.TextGenerator
	RateLimitRPS   float64
	RateLimitBurst int
}

type Handler struct {
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	log          logrus.FieldLogger
	metrics      *metrics.Recorder
	templates    map[string]*template.Template
	now          func() time.Time

	loginLimiter  *failureLimiter
	clientLimiter *clientLimiter

	nutrition     nutrition.Policy
	authService   *services.AuthService
	profiles      *services.ProfileService
	settings      *services.SettingsService
	stats         *services.StatsService
	foods         *services.FoodService
	mealLogs      *services.MealLogService
	dashboard     *services.DashboardService
	community     *services.CommunityService
	challenges    *services.ChallengeService
	subscriptions *services.SubscriptionService
	mealPlans     *services.MealPlanService
	admin         *services.AdminService
	ai            *services.AIService
}

func NewHandler(database *gorm.DB, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if options.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Logger == nil {
		options.Logger = logrus.StandardLogger()
	}
	policy := nutrition.DefaultPolicy
	if options.Nutrition != nil {
		policy = *options.Nutrition
	}
	if options.Mailer == nil {
		options.Mailer = mailer.NewLog(options.Logger)
	}

	templates, err := parsePageTemplates()
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		secretKey:     []byte(options.SecretKey),
		location:      options.Location,
		cookieSecure:  options.CookieSecure,
		log:           options.Logger,
		metrics:       options.Metrics,
		templates:     templates,
		now:           time.Now,
		loginLimiter:  newFailureLimiter(loginAttemptsLimit, loginAttemptsWindow),
		clientLimiter: newClientLimiter(options.RateLimitRPS, options.RateLimitBurst),
		nutrition:     policy,
	}
	handler.withDependencies(database, options)
	return handler, nil
}

func (handler *Handler) withDependencies(database *gorm.DB, options Options) {
	repos := db.NewRepositories(database)

	profilePolicy := services.NewProfilePolicy(handler.nutrition, options.Metrics)
	handler.authService = services.NewAuthService(repos.Users, profilePolicy)
	handler.profiles = services.NewProfileService(repos.Profiles, repos.Users, profilePolicy)
	handler.settings = services.NewSettingsService(repos.Users)
	handler.stats = services.NewStatsService(repos.Users, repos.Profiles, repos.Foods, repos.FoodLogs, repos.Posts)
	handler.foods = services.NewFoodService(repos.Foods, options.FoodCache, options.Metrics).WithLogger(options.Logger)
	handler.mealLogs = services.NewMealLogService(repos.FoodLogs, repos.Foods, options.Metrics)
	handler.dashboard = services.NewDashboardService(repos.FoodLogs, repos.Profiles)
	handler.community = services.NewCommunityService(repos.Posts)
	handler.challenges = services.NewChallengeService(repos.Challenges, repos.Users, repos.FoodLogs, repos.Profiles)
	handler.subscriptions = services.NewSubscriptionService(repos.Subscriptions)
	handler.mealPlans = services.NewMealPlanService(repos.MealPlans)
	handler.admin = services.NewAdminService(services.NewAdminPolicy(options.AdminEmails), repos.Users, repos.Posts, options.Mailer)
	handler.ai = services.NewAIService(options.TextGenerator, options.Metrics)
}

// Challenges exposes the challenge service to the scheduler.
func (handler *Handler) Challenges() *services.ChallengeService {
	return handler.challenges
}

// PruneLimiters drops limiter state that no longer affects any decision.
func (handler *Handler) PruneLimiters() {
	now := handler.now()
	handler.loginLimiter.prune(now)
	handler.clientLimiter.prune(now, clientLimiterIdleTTL)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) requestLog(c *fiber.Ctx) logrus.FieldLogger {
	entry := handler.log.WithField("path", c.Path())
	if requestID, ok := c.Locals("requestid").(string); ok && requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	return entry
}

// internalError logs err with request context and hides it from the client.
func (handler *Handler) internalError(c *fiber.Ctx, err error, message string) error {
	handler.requestLog(c).WithError(err).Error(message)
	return apiError(c, fiber.StatusInternalServerError, message)
}
