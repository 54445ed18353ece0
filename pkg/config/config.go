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

package config

import (
	"os"
	"time"

	"github.com/redhat-data-and-ai/sankalan/pkg/cache"
	"github.com/redhat-data-and-ai/sankalan/pkg/credentials"
	"github.com/redhat-data-and-ai/sankalan/pkg/secrets"
	"github.com/redhat-data-and-ai/sankalan/pkg/templates"
	"github.com/redhat-data-and-ai/sankalan/pkg/warehouse"
)

// Config represents the top-level configuration structure
type AppConfig struct {
	App         App                `yaml:"app"`
	APIServer   APIServer          `yaml:"apiServer"`
	Cache       cache.Config       `yaml:"cache"`
	Credentials credentials.Config `yaml:"credentials"`
	Secrets     secrets.Config     `yaml:"secrets"`
	Warehouse   warehouse.Config   `yaml:"warehouse"`
	Templates   templates.Config   `yaml:"templates"`
	Warmup      Warmup             `yaml:"warmup"`
}

// App represents the application configuration
type App struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}

// APIServer configures the HTTP API the dashboard reads reports from
type APIServer struct {
	Address string `yaml:"address"`
	CORS    CORS   `yaml:"cors"`
	Auth    Auth   `yaml:"auth"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
	AllowedMethods []string `yaml:"allowedMethods"`
	AllowedHeaders []string `yaml:"allowedHeaders"`
}

type Auth struct {
	Enabled    bool        `yaml:"enabled"`
	BasicUsers []BasicUser `yaml:"basicUsers"`
}

type BasicUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Warmup configures the periodic prefetch of every report
type Warmup struct {
	Enabled      bool          `yaml:"enabled"`
	Interval     time.Duration `yaml:"interval"`
	LookbackDays int           `yaml:"lookbackDays"`
}

var config *AppConfig

func LoadConfig(env string) (*AppConfig, error) {
	// Init config
	config = &AppConfig{}
	err := NewDefaultConfig().Load(env, config)
	if err != nil {
		return nil, err
	}

	if config.Warmup.LookbackDays <= 0 {
		config.Warmup.LookbackDays = 7
	}
	if config.Warmup.Interval <= 0 {
		config.Warmup.Interval = time.Hour
	}

	return config, nil
}

func getOrDefaultEnv() string {
	env := os.Getenv("APP_ENV")
	if len(env) == 0 {
		return "default"
	}
	return env
}

func GetConfig() (*AppConfig, error) {
	var err error
	if config == nil {
		config, err = LoadConfig(getOrDefaultEnv())
	}

	return config, err
}
