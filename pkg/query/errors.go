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

package query

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when the start date is after the end date or a date is invalid
	ErrInvalidRange = errors.New("invalid date range")
	// ErrTemplateMissing is returned when the template id does not resolve to a template
	ErrTemplateMissing = errors.New("query template missing")
	// ErrSubstitution is returned when the template lacks a date placeholder
	ErrSubstitution = errors.New("template substitution failed")
	// ErrExecutionFailed is returned when no warehouse client is available or the query fails
	ErrExecutionFailed = errors.New("query execution failed")
)

// QueryError reports which key failed, the failure kind and its cause.
// errors.Is matches both the kind and anything in the cause chain.
type QueryError struct {
	Kind error
	Key  Key
	Err  error
}

func (e *QueryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Key, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Key, e.Kind, e.Err)
}

func (e *QueryError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, key Key, err error) *QueryError {
	return &QueryError{Kind: kind, Key: key, Err: err}
}
