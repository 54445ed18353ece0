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

// Package query executes report templates against the warehouse and
// memoizes successful results per (template, start date, end date).
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/redhat-data-and-ai/sankalan/pkg/cache"
	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
	"github.com/redhat-data-and-ai/sankalan/pkg/templates"
	"github.com/redhat-data-and-ai/sankalan/pkg/warehouse"
)

const keyPrefix = "query:"

// Key identifies one memoized result
type Key struct {
	TemplateID string
	Start      civil.Date
	End        civil.Date
}

// String is the cache key, query:<template>:<start>:<end>
func (k Key) String() string {
	return fmt.Sprintf("%s%s:%s:%s", keyPrefix, k.TemplateID, k.Start, k.End)
}

// HandleSource hands out the shared warehouse client, resolving it on first use
type HandleSource interface {
	Handle(ctx context.Context) (warehouse.Client, error)
}

// Cache runs templates and memoizes successful results in a cache backend.
// Failed fetches leave no entry behind, so the next identical call runs again.
type Cache struct {
	store     cache.Cache
	ttl       time.Duration
	templates templates.Store
	handles   HandleSource
	group     singleflight.Group
}

// NewCache returns a query cache storing results in store for ttl.
// A negative ttl keeps results for the lifetime of the store.
func NewCache(store cache.Cache, ttl time.Duration, tmpl templates.Store, handles HandleSource) *Cache {
	return &Cache{
		store:     store,
		ttl:       ttl,
		templates: tmpl,
		handles:   handles,
	}
}

// Fetch returns the result of templateID over [start, end]. A cached result
// is returned without touching the warehouse. Concurrent identical calls
// share one execution and each receives its own copy of the table.
// A caller whose ctx ends returns ctx.Err() while the execution continues
// for the remaining callers.
func (c *Cache) Fetch(ctx context.Context, templateID string, start, end civil.Date) (*structs.ResultTable, error) {
	key := Key{TemplateID: templateID, Start: start, End: end}
	ctx = logger.AddValueToContextLogger(ctx, "template_id", templateID)

	if !start.IsValid() || !end.IsValid() {
		return nil, newError(ErrInvalidRange, key, errors.New("dates must be valid calendar dates"))
	}
	if end.Before(start) {
		return nil, newError(ErrInvalidRange, key, fmt.Errorf("start %s is after end %s", start, end))
	}

	if table, ok := c.lookup(ctx, key); ok {
		return table, nil
	}

	// the shared execution outlives any single caller, so one caller giving up
	// does not fail the others joined on the same key
	flight := c.group.DoChan(key.String(), func() (interface{}, error) {
		return c.execute(context.WithoutCancel(ctx), key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		table := res.Val.(*structs.ResultTable)
		if res.Shared {
			return table.Clone(), nil
		}
		return table, nil
	}
}

// Invalidate drops the memoized result for one key
func (c *Cache) Invalidate(ctx context.Context, templateID string, start, end civil.Date) error {
	key := Key{TemplateID: templateID, Start: start, End: end}
	return c.store.Delete(ctx, key.String())
}

// InvalidateTemplate drops every memoized range of templateID and
// returns how many entries were removed.
func (c *Cache) InvalidateTemplate(ctx context.Context, templateID string) (int, error) {
	if templateID == "" || strings.ContainsAny(templateID, `*?[]\:`) {
		return 0, fmt.Errorf("%w: %q", templates.ErrInvalidID, templateID)
	}

	entries, err := c.store.GetByPattern(ctx, keyPrefix+templateID+":*")
	if err != nil {
		return 0, fmt.Errorf("failed to list cached results of %s: %w", templateID, err)
	}

	var removed int
	var errs []error
	for key := range entries {
		if err := c.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	logger.Logger(ctx).WithFields(logrus.Fields{
		"template_id": templateID,
		"removed":     removed,
	}).Info("invalidated cached query results")
	return removed, errors.Join(errs...)
}

func (c *Cache) lookup(ctx context.Context, key Key) (*structs.ResultTable, bool) {
	log := logger.Logger(ctx).WithField("key", key.String())

	value, err := c.store.Get(ctx, key.String())
	if err != nil {
		if !cache.IsNotFound(err) {
			log.WithError(err).Warn("failed to read query result from cache")
		}
		return nil, false
	}

	encoded, ok := value.(string)
	if !ok {
		log.WithField("type", fmt.Sprintf("%T", value)).Warn("unexpected cached value")
		return nil, false
	}

	var table structs.ResultTable
	if err := json.Unmarshal([]byte(encoded), &table); err != nil {
		log.WithError(err).Warn("failed to decode cached query result")
		return nil, false
	}

	log.Debug("query cache hit")
	return &table, true
}

func (c *Cache) execute(ctx context.Context, key Key) (*structs.ResultTable, error) {
	log := logger.Logger(ctx).WithField("key", key.String())

	text, err := c.templates.Load(key.TemplateID)
	if err != nil {
		return nil, newError(ErrTemplateMissing, key, err)
	}

	sql, err := Substitute(text, key.Start, key.End)
	if err != nil {
		return nil, newError(ErrSubstitution, key, err)
	}

	client, err := c.handles.Handle(ctx)
	if err != nil {
		return nil, newError(ErrExecutionFailed, key, err)
	}

	start := time.Now()
	table, err := client.Query(ctx, sql)
	if err != nil {
		log.WithError(err).Error("query execution failed")
		return nil, newError(ErrExecutionFailed, key, err)
	}

	log.WithFields(logrus.Fields{
		"project":    client.Project(),
		"rows":       table.Len(),
		"durationMs": time.Since(start).Milliseconds(),
	}).Info("query executed")

	c.save(ctx, key, table)
	return table, nil
}

// save stores a successful result. Write failures are only logged.
func (c *Cache) save(ctx context.Context, key Key, table *structs.ResultTable) {
	log := logger.Logger(ctx).WithField("key", key.String())

	encoded, err := json.Marshal(table)
	if err != nil {
		log.WithError(err).Warn("failed to encode query result")
		return
	}
	if err := c.store.Set(ctx, key.String(), string(encoded), c.ttl); err != nil {
		log.WithError(err).Warn("failed to store query result in cache")
	}
}
