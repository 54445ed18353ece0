package periodicjobs

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
)

// PeriodicTask is a job run by the PeriodicTaskManager every GetInterval
type PeriodicTask interface {
	Run(ctx context.Context) error
	GetInterval() time.Duration
	GetName() string
}

// Warmer prefetches every report topic over a date range
type Warmer interface {
	Warm(ctx context.Context, start, end civil.Date) (int, error)
}

type PeriodicTaskManager struct {
	Tasks []PeriodicTask
}

// NewPeriodicTaskManager returns an empty manager, tasks are added with AddTask
func NewPeriodicTaskManager() *PeriodicTaskManager {
	return &PeriodicTaskManager{
		Tasks: []PeriodicTask{},
	}
}

func (p *PeriodicTaskManager) AddTask(task PeriodicTask) {
	p.Tasks = append(p.Tasks, task)
}
