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

// Package templates loads the SQL templates reports are built from.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
)

//go:embed sql/*.sql
var embedded embed.FS

const extension = ".sql"

var (
	// ErrNotFound is returned when no template exists for an id
	ErrNotFound = errors.New("template not found")
	// ErrInvalidID is returned for ids that are not lower-case words
	ErrInvalidID = errors.New("invalid template id")

	idPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Config selects where templates are read from
type Config struct {
	// Dir overrides the built-in templates when set
	Dir string `yaml:"dir"`
}

// Store returns template text by id
type Store interface {
	Load(id string) (string, error)
	List() ([]string, error)
}

// FSStore reads "<id>.sql" files from a file system
type FSStore struct {
	fsys fs.FS
}

// NewFSStore returns a store over fsys
func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// Default returns the store over the templates compiled into the binary
func Default() *FSStore {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}
	return NewFSStore(sub)
}

// New returns a store over config.Dir, or the built-in templates
func New(config *Config) (*FSStore, error) {
	if config == nil || config.Dir == "" {
		return Default(), nil
	}

	info, err := os.Stat(config.Dir)
	if err != nil {
		return nil, fmt.Errorf("template dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template dir %s is not a directory", config.Dir)
	}
	return NewFSStore(os.DirFS(config.Dir)), nil
}

// Load returns the template text for id
func (s *FSStore) Load(id string) (string, error) {
	if !idPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	data, err := fs.ReadFile(s.fsys, id+extension)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", err
	}
	return string(data), nil
}

// List returns the ids of every template in the store, sorted
func (s *FSStore) List() ([]string, error) {
	matches, err := fs.Glob(s.fsys, "*"+extension)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := strings.TrimSuffix(path.Base(m), extension)
		if idPattern.MatchString(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
