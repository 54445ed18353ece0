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

package report

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
)

// Fetcher runs a template over a date range
type Fetcher interface {
	Fetch(ctx context.Context, templateID string, start, end civil.Date) (*structs.ResultTable, error)
}

// Report is a topic's result table with its narrative
type Report struct {
	Topic     string               `json:"topic"`
	Title     string               `json:"title"`
	StartDate civil.Date           `json:"start_date"`
	EndDate   civil.Date           `json:"end_date"`
	Table     *structs.ResultTable `json:"table"`
	Narrative string               `json:"narrative"`
	Metrics   []Metric             `json:"metrics,omitempty"`
}

// Service builds reports from cached query results
type Service struct {
	fetcher Fetcher
}

func NewService(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// Build fetches the topic's template over [start, end] and narrates it
func (s *Service) Build(ctx context.Context, topicID string, start, end civil.Date) (*Report, error) {
	topic, err := Lookup(topicID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, topicID)
	}

	table, err := s.fetcher.Fetch(ctx, topic.TemplateID, start, end)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Topic:     topic.ID,
		Title:     topic.Title,
		StartDate: start,
		EndDate:   end,
		Table:     table,
	}

	if table == nil || table.Len() == 0 {
		report.Narrative = fmt.Sprintf("No %s data available.", topic.subject)
	} else {
		report.Narrative, report.Metrics = topic.narrate(table)
	}

	logger.Logger(ctx).WithField("topic", topic.ID).
		WithField("rows", report.Table.Len()).
		Debug("report built")

	return report, nil
}

// Warm fetches every topic over [start, end] so later reads hit the cache.
// It returns how many topics were fetched and the joined failures.
func (s *Service) Warm(ctx context.Context, start, end civil.Date) (int, error) {
	var warmed int
	var errs []error
	for _, topic := range catalog {
		if _, err := s.fetcher.Fetch(ctx, topic.TemplateID, start, end); err != nil {
			logger.Logger(ctx).WithField("topic", topic.ID).WithError(err).Warn("failed to warm report")
			errs = append(errs, fmt.Errorf("%s: %w", topic.ID, err))
			continue
		}
		warmed++
	}
	return warmed, errors.Join(errs...)
}
