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
	"errors"
	"fmt"
	"os"
	"path"
	"reflect"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Default options for configuration loading.
const (
	DefaultConfigType     = "yaml"
	DefaultConfigDir      = "./appconfig"
	DefaultConfigFileName = "default"

	// WorkDirEnv points at the directory holding appconfig/
	WorkDirEnv = "SANKALAN_WORKDIR"

	// EnvOverridePrefix prefixes environment overrides of config keys,
	// SANKALAN_CACHE_DRIVER overrides cache.driver.
	EnvOverridePrefix = "SANKALAN"

	// EnvPrefix reads a value from the environment: env|VAR or env|VAR|fallback
	EnvPrefix = "env|"
	// FilePrefix reads a value from a file, trimmed: file|/path
	FilePrefix = "file|"
)

// Options is config options.
type Options struct {
	configType            string
	configPath            string
	defaultConfigFileName string
}

// Config is a wrapper over a underlying config loader implementation.
type Config struct {
	opts  Options
	viper *viper.Viper
}

// NewDefaultOptions looks for appconfig/ under $SANKALAN_WORKDIR, or
// relative to the module root when unset.
func NewDefaultOptions() Options {
	var configPath string
	workDir := os.Getenv(WorkDirEnv)
	if workDir != "" {
		configPath = path.Join(workDir, DefaultConfigDir)
	} else {
		_, thisFile, _, _ := runtime.Caller(0)
		configPath = path.Join(path.Dir(thisFile), "../../"+DefaultConfigDir)
	}
	return NewOptions(DefaultConfigType, configPath, DefaultConfigFileName)
}

// NewOptions returns new Options struct.
func NewOptions(configType string, configPath string, defaultConfigFileName string) Options {
	return Options{configType, configPath, defaultConfigFileName}
}

// NewDefaultConfig returns new config struct with default options.
func NewDefaultConfig() *Config {
	return NewConfig(NewDefaultOptions())
}

// NewConfig returns new config struct.
func NewConfig(opts Options) *Config {
	v := viper.New()
	v.SetConfigType(opts.configType)
	v.AddConfigPath(opts.configPath)
	v.SetEnvPrefix(EnvOverridePrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Config{opts, v}
}

// Load reads the default file, merges the environment file over it and
// unmarshals the result into config. Substitution runs last so overlays
// and environment overrides can use env| and file| values too.
func (c *Config) Load(env string, config interface{}) error {
	if err := c.readConfig(c.opts.defaultConfigFileName, false); err != nil {
		return err
	}
	if env != "" && env != c.opts.defaultConfigFileName {
		if err := c.readConfig(env, true); err != nil {
			return err
		}
	}
	if err := c.viper.Unmarshal(config); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return SubstituteConfigValues(reflect.ValueOf(config))
}

func (c *Config) readConfig(name string, merge bool) error {
	c.viper.SetConfigName(name)
	read := c.viper.ReadInConfig
	if merge {
		read = c.viper.MergeInConfig
	}
	if err := read(); err != nil {
		return fmt.Errorf("failed to read config %q from %s: %w", name, c.opts.configPath, err)
	}
	return nil
}

// SubstituteConfigValues walks the config and replaces every 'env|VAR',
// 'env|VAR|fallback' or 'file|/path' string, including strings inside maps
// and slices. Unreadable files are reported together.
func SubstituteConfigValues(v reflect.Value) error {
	var errs []error
	substituteValue(v, &errs)
	return errors.Join(errs...)
}

func substituteValue(v reflect.Value, errs *[]error) {
	if !v.IsValid() {
		return
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if !v.IsNil() {
			substituteValue(v.Elem(), errs)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				substituteValue(v.Field(i), errs)
			}
		}
	case reflect.Map:
		for _, key := range v.MapKeys() {
			val := v.MapIndex(key)
			if val.Kind() == reflect.Interface && !val.IsNil() {
				val = val.Elem()
			}
			if val.Kind() == reflect.String {
				s, err := substituteString(val.String())
				if err != nil {
					*errs = append(*errs, err)
					continue
				}
				v.SetMapIndex(key, reflect.ValueOf(s))
				continue
			}
			// map values are not addressable, substitute a copy and store it back
			copyVal := reflect.New(val.Type()).Elem()
			copyVal.Set(val)
			substituteValue(copyVal, errs)
			v.SetMapIndex(key, copyVal)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			substituteValue(v.Index(i), errs)
		}
	case reflect.String:
		if !v.CanSet() {
			return
		}
		s, err := substituteString(v.String())
		if err != nil {
			*errs = append(*errs, err)
			return
		}
		v.SetString(s)
	}
}

func substituteString(s string) (string, error) {
	if rest, ok := strings.CutPrefix(s, EnvPrefix); ok && rest != "" {
		name, fallback, _ := strings.Cut(rest, "|")
		if value, set := os.LookupEnv(name); set {
			return value, nil
		}
		return fallback, nil
	}
	if file, ok := strings.CutPrefix(s, FilePrefix); ok && file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("config value %q: %w", s, err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return s, nil
}
