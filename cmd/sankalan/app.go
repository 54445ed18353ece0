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

package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/redhat-data-and-ai/sankalan/pkg/cache"
	"github.com/redhat-data-and-ai/sankalan/pkg/config"
	"github.com/redhat-data-and-ai/sankalan/pkg/credentials"
	"github.com/redhat-data-and-ai/sankalan/pkg/query"
	"github.com/redhat-data-and-ai/sankalan/pkg/report"
	"github.com/redhat-data-and-ai/sankalan/pkg/templates"
	"github.com/redhat-data-and-ai/sankalan/pkg/warehouse"
)

// application holds the components shared by every command
type application struct {
	config    *config.AppConfig
	store     cache.Cache
	templates templates.Store
	resolver  *credentials.Resolver
	queries   *query.Cache
	reports   *report.Service
}

func loadConfig(env string) (*config.AppConfig, error) {
	if env == "" {
		return config.GetConfig()
	}
	return config.LoadConfig(env)
}

func newApplication(env string) (*application, error) {
	cfg, err := loadConfig(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	store, err := cache.New(&cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	tmpl, err := templates.New(&cfg.Templates)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	connect, err := warehouse.NewConnector(&cfg.Warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to configure warehouse: %w", err)
	}

	sources, err := credentials.NewSources(&cfg.Credentials, &cfg.Secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to configure credential sources: %w", err)
	}

	resolver := credentials.NewResolver(connect, sources...)
	queries := query.NewCache(store, cfg.Cache.Expiration(), tmpl, resolver)

	logrus.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"cache":       cfg.Cache.Driver,
		"warehouse":   cfg.Warehouse.Driver,
		"sources":     len(sources),
	}).Debug("application initialized")

	return &application{
		config:    cfg,
		store:     store,
		templates: tmpl,
		resolver:  resolver,
		queries:   queries,
		reports:   report.NewService(queries),
	}, nil
}

func (a *application) Close() {
	if err := a.resolver.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close warehouse client")
	}
	if d, ok := a.store.(interface{ Disconnect() error }); ok {
		if err := d.Disconnect(); err != nil {
			logrus.WithError(err).Warn("failed to disconnect cache")
		}
	}
}
