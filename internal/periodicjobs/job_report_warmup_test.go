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

package periodicjobs_test

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/redhat-data-and-ai/sankalan/internal/periodicjobs"
	"github.com/redhat-data-and-ai/sankalan/pkg/config"
)

type recordingWarmer struct {
	calls  int
	start  civil.Date
	end    civil.Date
	warmed int
	err    error
}

func (w *recordingWarmer) Warm(_ context.Context, start, end civil.Date) (int, error) {
	w.calls++
	w.start, w.end = start, end
	return w.warmed, w.err
}

var _ = Describe("ReportWarmupJob", func() {
	It("falls back to the default interval and lookback", func() {
		job := periodicjobs.NewReportWarmupJob(&recordingWarmer{}, config.Warmup{})
		Expect(job.GetInterval()).To(Equal(periodicjobs.DefaultWarmupInterval))
		Expect(job.GetName()).To(Equal(periodicjobs.ReportWarmupJobName))

		start, end := job.Window()
		Expect(start.DaysSince(end)).To(Equal(-(periodicjobs.DefaultLookbackDays - 1)))
		Expect(end).To(Equal(civil.DateOf(time.Now())))
	})

	It("warms the trailing window ending today", func() {
		warmer := &recordingWarmer{warmed: 8}
		job := periodicjobs.NewReportWarmupJob(warmer, config.Warmup{Interval: time.Minute, LookbackDays: 3})

		Expect(job.Run(context.Background())).To(Succeed())
		Expect(warmer.calls).To(Equal(1))
		Expect(warmer.end).To(Equal(civil.DateOf(time.Now())))
		Expect(warmer.start).To(Equal(warmer.end.AddDays(-2)))
		Expect(job.GetInterval()).To(Equal(time.Minute))
	})

	It("returns partial failures", func() {
		failure := errors.New("kpis: query execution failed")
		warmer := &recordingWarmer{warmed: 7, err: failure}
		job := periodicjobs.NewReportWarmupJob(warmer, config.Warmup{LookbackDays: 7})

		Expect(job.Run(context.Background())).To(MatchError(failure))
	})

	It("registers with the task manager", func() {
		mgr := periodicjobs.NewPeriodicTaskManager()
		periodicjobs.NewReportWarmupJob(&recordingWarmer{}, config.Warmup{}).AddToPeriodicTaskManager(mgr)
		Expect(mgr.Tasks).To(HaveLen(1))
	})
})
