package periodicjobs

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
)

const (
	syncOnceInterval time.Duration = 0
)

// RunAll launches one goroutine per task. Each task runs once right away,
// then on every tick of its interval until ctx is canceled.
// A task with a zero interval runs only once.
func (p *PeriodicTaskManager) RunAll(ctx context.Context) error {
	logger.Logger(ctx).WithField("tasks", len(p.Tasks)).Info("Running periodic tasks")

	for _, task := range p.Tasks {
		go p.runTask(ctx, task)
	}
	return nil
}

func (*PeriodicTaskManager) runTask(ctx context.Context, task PeriodicTask) {
	interval := task.GetInterval()
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"name":     task.GetName(),
		"interval": interval,
	})

	run := func() {
		log.Info("Running periodic task")
		if err := task.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("error running periodic task")
		}
	}

	run()
	if interval == syncOnceInterval {
		log.Info("Task configured to run only once, exiting")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping periodic task")
			return
		case <-ticker.C:
			run()
		}
	}
}
