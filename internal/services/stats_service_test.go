package services

import (
	"errors"
	"testing"
)

type fixedCount struct {
	count int64
	err   error
}

func (counter fixedCount) CountUsers() (int64, error) {
	return counter.count, counter.err
}

func (counter fixedCount) CountByUser(uint) (int64, error) {
	return counter.count, counter.err
}

func (counter fixedCount) CountCompleted() (int64, error) {
	return counter.count, counter.err
}

func (counter fixedCount) Count() (int64, error) {
	return counter.count, counter.err
}

func TestStatsForUser(t *testing.T) {
	service := NewStatsService(fixedCount{count: 1}, fixedCount{}, fixedCount{}, fixedCount{count: 12}, fixedCount{count: 3})

	stats, err := service.ForUser(1)
	if err != nil {
		t.Fatalf("ForUser() unexpected error: %v", err)
	}
	if stats.Logs != 12 || stats.Posts != 3 {
		t.Fatalf("expected 12 logs and 3 posts, got %+v", stats)
	}

	failing := NewStatsService(fixedCount{}, fixedCount{}, fixedCount{}, fixedCount{err: errors.New("boom")}, fixedCount{})
	if _, err := failing.ForUser(1); err == nil {
		t.Fatal("expected count failure to surface")
	}
}

func TestRequiresInitialSetup(t *testing.T) {
	empty, err := NewStatsService(fixedCount{count: 0}, fixedCount{}, fixedCount{}, fixedCount{}, fixedCount{}).RequiresInitialSetup()
	if err != nil || !empty {
		t.Fatalf("expected setup required on empty database, got %v (%v)", empty, err)
	}
	populated, err := NewStatsService(fixedCount{count: 2}, fixedCount{}, fixedCount{}, fixedCount{}, fixedCount{}).RequiresInitialSetup()
	if err != nil || populated {
		t.Fatalf("expected no setup once users exist, got %v (%v)", populated, err)
	}
}

func TestSiteStats(t *testing.T) {
	service := NewStatsService(fixedCount{count: 4}, fixedCount{count: 3}, fixedCount{count: 120}, fixedCount{}, fixedCount{})

	stats, err := service.Site()
	if err != nil {
		t.Fatalf("Site() unexpected error: %v", err)
	}
	if stats.Users != 4 || stats.CompletedProfiles != 3 || stats.Foods != 120 {
		t.Fatalf("unexpected site stats: %+v", stats)
	}

	failing := NewStatsService(fixedCount{}, fixedCount{}, fixedCount{err: errors.New("boom")}, fixedCount{}, fixedCount{})
	if _, err := failing.Site(); err == nil {
		t.Fatal("expected food count failure to surface")
	}
}
