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

package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
	"github.com/redhat-data-and-ai/sankalan/pkg/warehouse"
)

// Resolver turns the first usable credential source into a warehouse client
type Resolver struct {
	sources []Source
	connect warehouse.Connector

	mu     sync.Mutex
	client warehouse.Client
}

// NewResolver returns a Resolver trying sources in the given order
func NewResolver(connect warehouse.Connector, sources ...Source) *Resolver {
	return &Resolver{
		sources: sources,
		connect: connect,
	}
}

// Resolve walks the sources in order. A source that is missing, malformed
// or whose material the warehouse rejects is recorded and skipped. When
// every source fails the error is a *NoneAvailableError with one failure
// per source.
func (r *Resolver) Resolve(ctx context.Context) (warehouse.Client, error) {
	if len(r.sources) == 0 {
		return nil, ErrNoSources
	}

	failures := make([]SourceFailure, 0, len(r.sources))
	for _, source := range r.sources {
		log := logger.Logger(ctx).WithField("source", source.Name())

		material, err := source.Load(ctx)
		if err != nil {
			log.WithError(err).Warn("credential source failed")
			failures = append(failures, SourceFailure{Source: source.Name(), Err: err})
			continue
		}

		client, err := r.connect(ctx, material)
		if err != nil {
			err = fmt.Errorf("connect to project %s: %w", material.ProjectID, err)
			log.WithError(err).Warn("credential source failed")
			failures = append(failures, SourceFailure{Source: source.Name(), Err: err})
			continue
		}

		log.WithFields(logrus.Fields{
			"project": client.Project(),
			"driver":  client.Driver(),
		}).Info("credential source resolved")
		return client, nil
	}

	return nil, &NoneAvailableError{Failures: failures}
}

// Handle returns the process wide client, resolving it on first use.
// Failed resolutions are not remembered, the next call tries again.
func (r *Resolver) Handle(ctx context.Context) (warehouse.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	client, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

// Close releases the resolved client, if any
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	if err != nil {
		return errors.Join(errors.New("failed to close warehouse client"), err)
	}
	return nil
}
