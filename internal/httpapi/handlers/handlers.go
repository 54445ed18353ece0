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

package handlers

import (
	"errors"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"github.com/redhat-data-and-ai/sankalan/pkg/config"
	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
	"github.com/redhat-data-and-ai/sankalan/pkg/query"
	"github.com/redhat-data-and-ai/sankalan/pkg/report"
)

// DefaultRangeDays is the window used when a request names no dates
const DefaultRangeDays = 7

type Handlers struct {
	config  *config.AppConfig
	fetcher report.Fetcher
	reports *report.Service
	now     func() time.Time
}

func NewHandlers(cfg *config.AppConfig, fetcher report.Fetcher) *Handlers {
	return &Handlers{
		config:  cfg,
		fetcher: fetcher,
		reports: report.NewService(fetcher),
		now:     time.Now,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "sankalan-api",
		"status":  "running",
		"version": h.config.App.Version,
	})
}

// ListReports returns the report catalog
func (h *Handlers) ListReports(c *gin.Context) {
	c.JSON(http.StatusOK, report.Topics())
}

// GetReport returns one topic's table and narrative
func (h *Handlers) GetReport(c *gin.Context) {
	start, end, ok := h.dateRange(c)
	if !ok {
		return
	}

	r, err := h.reports.Build(c.Request.Context(), c.Param("topic"), start, end)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GetQuery returns the raw result table of one template
func (h *Handlers) GetQuery(c *gin.Context) {
	start, end, ok := h.dateRange(c)
	if !ok {
		return
	}

	table, err := h.fetcher.Fetch(c.Request.Context(), c.Param("template"), start, end)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// dateRange reads start_date and end_date, defaulting to the last
// DefaultRangeDays days ending today
func (h *Handlers) dateRange(c *gin.Context) (civil.Date, civil.Date, bool) {
	end := civil.DateOf(h.now())
	start := end.AddDays(-(DefaultRangeDays - 1))

	if v := c.Query("end_date"); v != "" {
		d, err := query.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return start, end, false
		}
		end = d
		if c.Query("start_date") == "" {
			start = end.AddDays(-(DefaultRangeDays - 1))
		}
	}
	if v := c.Query("start_date"); v != "" {
		d, err := query.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return start, end, false
		}
		start = d
	}
	return start, end, true
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	log := logger.Logger(c.Request.Context()).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Info("request rejected")
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrUnknownTopic), errors.Is(err, query.ErrTemplateMissing):
		return http.StatusNotFound
	case errors.Is(err, query.ErrExecutionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
