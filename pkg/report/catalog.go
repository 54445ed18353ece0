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

// Package report turns query results into the dashboard's report topics.
package report

import (
	"errors"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
)

// ErrUnknownTopic is returned for topic ids outside the catalog
var ErrUnknownTopic = errors.New("unknown report topic")

const (
	TopicKPIs             = "kpis"
	TopicTrends           = "trends"
	TopicTopPages         = "top_pages"
	TopicDevices          = "device_breakdown"
	TopicBrowsers         = "browser_breakdown"
	TopicTrafficSources   = "traffic_source"
	TopicUserSegments     = "user_segments"
	TopicBouncePrediction = "bounce_prediction"
)

// Topic is one dashboard tab backed by one query template
type Topic struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TemplateID string `json:"template_id"`

	// subject names the data in the empty-result narrative
	subject string
	narrate func(*structs.ResultTable) (string, []Metric)
}

var catalog = []Topic{
	{ID: TopicKPIs, Title: "KPIs", TemplateID: "kpis", subject: "KPI", narrate: narrateKPIs},
	{ID: TopicTrends, Title: "Traffic Trends", TemplateID: "trends", subject: "traffic trend", narrate: narrateTrends},
	{ID: TopicTopPages, Title: "Top Pages", TemplateID: "top_pages", subject: "top pages", narrate: narrateTopPages},
	{ID: TopicDevices, Title: "Devices", TemplateID: "device_breakdown", subject: "device", narrate: narrateDevices},
	{ID: TopicBrowsers, Title: "Browser", TemplateID: "browser_breakdown", subject: "browser", narrate: narrateBrowsers},
	{ID: TopicTrafficSources, Title: "Traffic Sources", TemplateID: "traffic_source", subject: "traffic source",
		narrate: narrateTrafficSources},
	{ID: TopicUserSegments, Title: "User Segments", TemplateID: "user_segments", subject: "user segment",
		narrate: narrateUserSegments},
	{ID: TopicBouncePrediction, Title: "Bounce Prediction", TemplateID: "bounce_prediction",
		subject: "bounce prediction", narrate: narrateBouncePrediction},
}

// Topics returns the catalog in dashboard order
func Topics() []Topic {
	topics := make([]Topic, len(catalog))
	copy(topics, catalog)
	return topics
}

// Lookup returns the topic registered under id
func Lookup(id string) (Topic, error) {
	for _, t := range catalog {
		if t.ID == id {
			return t, nil
		}
	}
	return Topic{}, ErrUnknownTopic
}
