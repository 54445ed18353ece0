/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package periodicjobs

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/redhat-data-and-ai/sankalan/pkg/config"
	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
)

const (
	// ReportWarmupJobName is the unique identifier for the report warmup job.
	ReportWarmupJobName = "sankalan_report_warmup"

	// DefaultWarmupInterval is used when no interval is configured.
	DefaultWarmupInterval = time.Hour

	// DefaultLookbackDays matches the API's default date range.
	DefaultLookbackDays = 7
)

// ReportWarmupJob keeps the trailing window of every report in the cache,
// so the first dashboard render after startup or expiry is a cache hit.
type ReportWarmupJob struct {
	warmer       Warmer
	interval     time.Duration
	lookbackDays int
	now          func() time.Time
}

func NewReportWarmupJob(warmer Warmer, cfg config.Warmup) *ReportWarmupJob {
	job := &ReportWarmupJob{
		warmer:       warmer,
		interval:     cfg.Interval,
		lookbackDays: cfg.LookbackDays,
		now:          time.Now,
	}
	if job.interval <= 0 {
		job.interval = DefaultWarmupInterval
	}
	if job.lookbackDays <= 0 {
		job.lookbackDays = DefaultLookbackDays
	}
	return job
}

// AddToPeriodicTaskManager registers this job with the provided periodic task manager.
func (j *ReportWarmupJob) AddToPeriodicTaskManager(mgr *PeriodicTaskManager) {
	mgr.AddTask(j)
}

func (j *ReportWarmupJob) GetInterval() time.Duration {
	return j.interval
}

func (j *ReportWarmupJob) GetName() string {
	return ReportWarmupJobName
}

// Window is the date range warmed on each run, lookbackDays days ending today
func (j *ReportWarmupJob) Window() (civil.Date, civil.Date) {
	end := civil.DateOf(j.now())
	return end.AddDays(-(j.lookbackDays - 1)), end
}

// Run warms every topic once. Partial failures are returned joined,
// the successfully warmed topics stay cached.
func (j *ReportWarmupJob) Run(ctx context.Context) error {
	start, end := j.Window()
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"job":        ReportWarmupJobName,
		"start_date": start.String(),
		"end_date":   end.String(),
	})
	log.Info("Starting report warmup")

	warmed, err := j.warmer.Warm(ctx, start, end)
	log = log.WithField("warmed", warmed)
	if err != nil {
		log.WithError(err).Warn("Report warmup completed with errors")
		return err
	}

	log.Info("Report warmup completed")
	return nil
}
