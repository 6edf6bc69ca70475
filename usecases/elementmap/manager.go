//       _
//   ___| | ___ _ __ ___   __ _ _ __
//  / _ \ |/ _ \ '_ ` _ \ / _` | '_ \
// |  __/ |  __/ | | | | | (_| | |_) |
//  \___|_|\___|_| |_| |_|\__,_| .__/
//                              |_|
//
//  Copyright © 2019 - 2025 Elemap B.V. All rights reserved.
//
//  CONTACT: hello@elemap.io
//

package elementmap

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	ent "github.com/elemap/elemap/entities/elementmap"
	"github.com/elemap/elemap/usecases/monitoring"
)

// Scanner discovers batches in one storage backend.
type Scanner interface {
	Batches(ctx context.Context) ([]ent.Batch, error)
}

// SnapshotStore persists the batch set between runs and rebuilds it on
// demand.
type SnapshotStore interface {
	Save(batches []ent.Batch) error
	Load() ([]ent.Batch, error)
}

// Manager ties the index lifecycle together: one scan and save at startup,
// then a fresh snapshot load for every query. There is no cross-request
// cache, the snapshot file is the only source batches are served from.
type Manager struct {
	scanner Scanner
	store   SnapshotStore
	metrics *monitoring.Metrics
	logger  logrus.FieldLogger
}

func NewManager(scanner Scanner, store SnapshotStore, metrics *monitoring.Metrics,
	logger logrus.FieldLogger,
) *Manager {
	return &Manager{
		scanner: scanner,
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// BuildIndex scans the configured storage once and persists the result.
// When the scan finds nothing, the save is skipped so a previous snapshot
// stays in place.
func (m *Manager) BuildIndex(ctx context.Context) error {
	batches, err := m.scanner.Batches(ctx)
	if err != nil {
		return errors.Wrap(err, "scan storage")
	}
	m.metrics.BatchesIndexed.Set(float64(len(batches)))

	if len(batches) == 0 {
		m.logger.WithField("action", "build_index").
			Warning("storage holds no batches, keeping the previous snapshot")
		return nil
	}

	if err := m.store.Save(batches); err != nil {
		return errors.Wrap(err, "save element map")
	}
	m.logger.WithField("action", "build_index").
		WithField("batches", len(batches)).
		Info("element map snapshot rebuilt")
	return nil
}

// ElementMap serializes every batch in stored order.
func (m *Manager) ElementMap(ctx context.Context) (result []ent.Serialized, err error) {
	start := time.Now()
	defer func() { m.observe("element_map", start, err) }()

	batches, err := m.loadBatches()
	if err != nil {
		return nil, err
	}
	result = make([]ent.Serialized, len(batches))
	for i, batch := range batches {
		result[i] = batch.Serialize()
	}
	return result, nil
}

// Element resolves one element by batch query and element id. An
// unresolved batch or element yields nil without an error.
func (m *Manager) Element(ctx context.Context, query, id string) (element *ent.Element, err error) {
	start := time.Now()
	defer func() { m.observe("element", start, err) }()

	batches, err := m.loadBatches()
	if err != nil {
		return nil, err
	}
	batch := BatchFromQuery(batches, query)
	if batch == nil {
		return nil, nil
	}
	return batch.GetElement(ctx, id)
}

// Elements returns one page of the resolved batch, nil when the batch does
// not resolve.
func (m *Manager) Elements(ctx context.Context, query string, page, limit int,
	rankBy string,
) (elements []*ent.Element, err error) {
	start := time.Now()
	defer func() { m.observe("elements", start, err) }()

	batches, err := m.loadBatches()
	if err != nil {
		return nil, err
	}
	batch := BatchFromQuery(batches, query)
	if batch == nil {
		return nil, nil
	}
	return batch.GetElements(ctx, page, limit, rankBy)
}

// ElementsByID resolves several elements of one batch in request order.
// Misses keep their slot as nil, so callers can align ids and results.
func (m *Manager) ElementsByID(ctx context.Context, query string, ids []string) (elements []*ent.Element, err error) {
	start := time.Now()
	defer func() { m.observe("elements_by_id", start, err) }()

	batches, err := m.loadBatches()
	if err != nil {
		return nil, err
	}
	batch := BatchFromQuery(batches, query)
	if batch == nil {
		return nil, nil
	}

	elements = make([]*ent.Element, 0, len(ids))
	for _, id := range ids {
		element, err := batch.GetElement(ctx, id)
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
	}
	return elements, nil
}

// BatchAttribute reads one persisted attribute of the resolved batch.
func (m *Manager) BatchAttribute(ctx context.Context, query, attr string) (value interface{}, err error) {
	start := time.Now()
	defer func() { m.observe("batch_attribute", start, err) }()

	batches, err := m.loadBatches()
	if err != nil {
		return nil, err
	}
	batch := BatchFromQuery(batches, query)
	if batch == nil {
		return nil, nil
	}
	return batch.Attribute(attr), nil
}

// BatchAttributes reads one attribute across every batch, in stored order.
func (m *Manager) BatchAttributes(ctx context.Context, attr string) (values []interface{}, err error) {
	start := time.Now()
	defer func() { m.observe("batch_attribute", start, err) }()

	batches, err := m.loadBatches()
	if err != nil {
		return nil, err
	}
	values = make([]interface{}, len(batches))
	for i, batch := range batches {
		values[i] = batch.Attribute(attr)
	}
	return values, nil
}

func (m *Manager) loadBatches() ([]ent.Batch, error) {
	timer := prometheus.NewTimer(m.metrics.SnapshotLoadDuration)
	defer timer.ObserveDuration()
	return m.store.Load()
}

func (m *Manager) observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.metrics.OperationTotal.WithLabelValues(operation, status).Inc()
	m.metrics.OperationDuration.WithLabelValues(operation).
		Observe(time.Since(start).Seconds())
}
