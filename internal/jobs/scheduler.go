// Package jobs runs the periodic background tasks.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebalance/internal/services"
)

type ChallengeEvaluator interface {
	EvaluateAll(now time.Time, location *time.Location) (services.ChallengeEvaluation, error)
}

type ChallengeRunObserver interface {
	ObserveChallengeRun(success bool)
}

type Scheduler struct {
	cron     *cron.Cron
	log      logrus.FieldLogger
	location *time.Location
	now      func() time.Time
}

func New(log logrus.FieldLogger, location *time.Location) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	jobLog := log.WithField("component", "jobs")
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.Recover(cron.PrintfLogger(jobLog)), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log:      jobLog,
		location: location,
		now:      time.Now,
	}
}

// AddTask registers a named task on a standard five-field spec or a
// descriptor such as "@every 10m".
func (scheduler *Scheduler) AddTask(spec string, name string, task func() error) error {
	_, err := scheduler.cron.AddFunc(spec, func() {
		started := scheduler.now()
		entry := scheduler.log.WithField("task", name)
		if err := task(); err != nil {
			entry.WithError(err).Error("task failed")
			return
		}
		entry.WithField("duration", time.Since(started).String()).Debug("task finished")
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (scheduler *Scheduler) AddChallengeEvaluation(spec string, evaluator ChallengeEvaluator, observer ChallengeRunObserver) error {
	return scheduler.AddTask(spec, "challenge-evaluation", func() error {
		return RunChallengeEvaluation(evaluator, observer, scheduler.log, scheduler.now(), scheduler.location)
	})
}

// RunChallengeEvaluation is one scheduled pass. Partial failures are logged
// and reported as an unsuccessful run.
func RunChallengeEvaluation(evaluator ChallengeEvaluator, observer ChallengeRunObserver, log logrus.FieldLogger, now time.Time, location *time.Location) error {
	report, err := evaluator.EvaluateAll(now, location)
	if observer != nil {
		observer.ObserveChallengeRun(err == nil)
	}
	log.WithFields(logrus.Fields{
		"users":   report.Users,
		"updated": report.Updated,
	}).Info("challenge progress evaluated")
	return err
}

func (scheduler *Scheduler) Entries() int {
	return len(scheduler.cron.Entries())
}

func (scheduler *Scheduler) Start() {
	scheduler.cron.Start()
}

// Stop waits for running tasks until ctx is done.
func (scheduler *Scheduler) Stop(ctx context.Context) {
	select {
	case <-scheduler.cron.Stop().Done():
	case <-ctx.Done():
	}
}
