package services

type StatsUserRepository interface {
	CountUsers() (int64, error)
}

type StatsProfileRepository interface {
	CountCompleted() (int64, error)
}

type StatsFoodRepository interface {
	Count() (int64, error)
}

type StatsLogRepository interface {
	CountByUser(userID uint) (int64, error)
}

type StatsPostRepository interface {
	CountByUser(userID uint) (int64, error)
}

type UserActivityStats struct {
	Logs  int64 `json:"logs"`
	Posts int64 `json:"posts"`
}

// SiteStats is the admin overview of the whole installation.
type SiteStats struct {
	Users             int64 `json:"users"`
	CompletedProfiles int64 `json:"completedProfiles"`
	Foods             int64 `json:"foods"`
}

type StatsService struct {
	users    StatsUserRepository
	profiles StatsProfileRepository
	foods    StatsFoodRepository
	logs     StatsLogRepository
	posts    StatsPostRepository
}

func NewStatsService(users StatsUserRepository, profiles StatsProfileRepository, foods StatsFoodRepository, logs StatsLogRepository, posts StatsPostRepository) *StatsService {
	return &StatsService{users: users, profiles: profiles, foods: foods, logs: logs, posts: posts}
}

func (service *StatsService) ForUser(userID uint) (UserActivityStats, error) {
	logs, err := service.logs.CountByUser(userID)
	if err != nil {
		return UserActivityStats{}, err
	}
	posts, err := service.posts.CountByUser(userID)
	if err != nil {
		return UserActivityStats{}, err
	}
	return UserActivityStats{Logs: logs, Posts: posts}, nil
}

// RequiresInitialSetup reports whether no account exists yet.
func (service *StatsService) RequiresInitialSetup() (bool, error) {
	usersCount, err := service.users.CountUsers()
	if err != nil {
		return false, err
	}
	return usersCount == 0, nil
}

func (service *StatsService) Site() (SiteStats, error) {
	users, err := service.users.CountUsers()
	if err != nil {
		return SiteStats{}, err
	}
	profiles, err := service.profiles.CountCompleted()
	if err != nil {
		return SiteStats{}, err
	}
	foods, err := service.foods.Count()
	if err != nil {
		return SiteStats{}, err
	}
	return SiteStats{Users: users, CompletedProfiles: profiles, Foods: foods}, nil
}
