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

// Package credentials resolves warehouse credential material from an ordered
// list of sources and turns the first usable one into a warehouse client.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
)

var (
	// ErrSourceParseFailed is recorded when a source holds material that is not valid credential JSON
	ErrSourceParseFailed = errors.New("credential material could not be parsed")
	// ErrSourceNotFound is recorded when a source holds no material at all
	ErrSourceNotFound = errors.New("credential material not found")
	// ErrNoneAvailable is returned when every configured source failed
	ErrNoneAvailable = errors.New("no credential source available")
	// ErrNoSources is returned when the resolver has nothing to try
	ErrNoSources = errors.New("no credential sources configured")
)

// Source yields credential material
type Source interface {
	// Name identifies the source in logs and failure reports
	Name() string
	// Load returns the parsed material or the reason it is unusable
	Load(ctx context.Context) (*structs.ServiceAccount, error)
}

// SourceFailure is the reason one source could not be used
type SourceFailure struct {
	Source string
	Err    error
}

func (f SourceFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Source, f.Err)
}

func (f SourceFailure) Unwrap() error {
	return f.Err
}

// NoneAvailableError carries one failure per configured source, in source order
type NoneAvailableError struct {
	Failures []SourceFailure
}

func (e *NoneAvailableError) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, f.Error())
	}
	return fmt.Sprintf("%s: [%s]", ErrNoneAvailable, strings.Join(reasons, "; "))
}

// Is makes errors.Is(err, ErrNoneAvailable) true
func (e *NoneAvailableError) Is(target error) bool {
	return target == ErrNoneAvailable
}

// Unwrap exposes the per-source causes to errors.Is and errors.As
func (e *NoneAvailableError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}
