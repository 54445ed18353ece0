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
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

const (
	PlaceholderStart = "{start_date}"
	PlaceholderEnd   = "{end_date}"
)

// Substitute binds the date range into a template. Only validated calendar
// dates are ever written into the statement, each as a DATE('YYYY-MM-DD')
// literal.
func Substitute(template string, start, end civil.Date) (string, error) {
	if !start.IsValid() || !end.IsValid() {
		return "", fmt.Errorf("invalid date %s or %s", start, end)
	}

	var missing []string
	for _, placeholder := range []string{PlaceholderStart, PlaceholderEnd} {
		if !strings.Contains(template, placeholder) {
			missing = append(missing, placeholder)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("template has no %s placeholder", strings.Join(missing, " or "))
	}

	return strings.NewReplacer(
		PlaceholderStart, dateLiteral(start),
		PlaceholderEnd, dateLiteral(end),
	).Replace(template), nil
}

func dateLiteral(d civil.Date) string {
	return fmt.Sprintf("DATE('%s')", d)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidRange, s)
	}
	return d, nil
}
