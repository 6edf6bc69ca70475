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

// Package snapshot persists the element map between runs. A snapshot is a
// msgpack-encoded list of batch records, each holding the batch's type tag
// and its persisted attributes. Loading rebuilds batches through the
// configured backend restorers without touching storage.
package snapshot

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/elemap/elemap/entities/elementmap"
)

// Record is one persisted batch. Attrs stays raw until the type tag has
// selected the attribute set to decode it against.
type Record struct {
	Type  string             `msgpack:"type"`
	Attrs msgpack.RawMessage `msgpack:"attrs"`
}

type recordAttrs struct {
	Query    string                 `msgpack:"query"`
	EType    string                 `msgpack:"etype"`
	Config   map[string]interface{} `msgpack:"config"`
	Elements []string               `msgpack:"elements"`
	Root     string                 `msgpack:"root"`
	Ranking  elementmap.Ranking     `msgpack:"ranking"`
}

// LocalRestorer rebuilds a local batch from persisted attributes.
type LocalRestorer interface {
	RestoreBatch(query, etype string, config map[string]interface{},
		root string, elements []string) elementmap.Batch
}

// ObjectRestorer rebuilds an object-store batch from persisted attributes,
// ranking override included.
type ObjectRestorer interface {
	RestoreBatch(query, etype string, config map[string]interface{},
		root string, elements []string, ranking elementmap.Ranking) elementmap.Batch
}

// Store reads and writes snapshots at a fixed path. Either restorer may be
// nil when the matching backend is not configured; loading a record of that
// type then fails.
type Store struct {
	path   string
	local  LocalRestorer
	object ObjectRestorer
	logger logrus.FieldLogger
}

func NewStore(path string, local LocalRestorer, object ObjectRestorer,
	logger logrus.FieldLogger,
) *Store {
	return &Store{
		path:   path,
		local:  local,
		object: object,
		logger: logger,
	}
}

// Save persists one record per batch. The snapshot is written to a
// temporary file first and moved into place, so a crash mid-write never
// leaves a truncated snapshot behind.
func (s *Store) Save(batches []elementmap.Batch) error {
	records := make([]Record, len(batches))
	for i, batch := range batches {
		attrs := map[string]interface{}{}
		for _, name := range batch.Attrs() {
			attrs[name] = batch.Attribute(name)
		}
		packed, err := msgpack.Marshal(attrs)
		if err != nil {
			return errors.Wrapf(err, "pack batch '%s'", batch.Query())
		}
		records[i] = Record{Type: batch.Type(), Attrs: packed}
	}

	data, err := msgpack.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "pack element map")
	}
	if err := s.replaceSnapshot(data); err != nil {
		return err
	}

	s.logger.WithField("action", "snapshot_save").
		WithField("path", s.path).
		WithField("batches", len(batches)).
		Debug("element map snapshot written")
	return nil
}

// Load reads the snapshot and rebuilds every recorded batch in stored
// order. A missing or unreadable snapshot is an error, not an empty map:
// starting with nothing to serve is treated as a deployment fault.
func (s *Store) Load() ([]elementmap.Batch, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "read snapshot '%s'", s.path)
	}

	var records []Record
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "unpack snapshot '%s'", s.path)
	}

	batches := make([]elementmap.Batch, 0, len(records))
	for i, record := range records {
		batch, err := s.restore(record)
		if err != nil {
			return nil, errors.Wrapf(err, "snapshot record %d", i)
		}
		batches = append(batches, batch)
	}

	s.logger.WithField("action", "snapshot_load").
		WithField("path", s.path).
		WithField("batches", len(batches)).
		Debug("element map snapshot loaded")
	return batches, nil
}

func (s *Store) restore(record Record) (elementmap.Batch, error) {
	var required []string
	switch record.Type {
	case elementmap.BatchTypeLocal:
		required = elementmap.LocalAttrs()
	case elementmap.BatchTypeObject:
		required = elementmap.ObjectAttrs()
	default:
		return nil, errors.Errorf("unknown batch type '%s'", record.Type)
	}

	var present map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(record.Attrs, &present); err != nil {
		return nil, errors.Wrap(err, "unpack attributes")
	}
	for _, name := range required {
		if _, ok := present[name]; !ok {
			return nil, errors.Errorf("batch type '%s' misses attribute '%s'",
				record.Type, name)
		}
	}

	var attrs recordAttrs
	if err := msgpack.Unmarshal(record.Attrs, &attrs); err != nil {
		return nil, errors.Wrap(err, "unpack attributes")
	}

	if record.Type == elementmap.BatchTypeLocal {
		if s.local == nil {
			return nil, errors.Errorf("no local backend configured for batch '%s'", attrs.Query)
		}
		return s.local.RestoreBatch(attrs.Query, attrs.EType, attrs.Config,
			attrs.Root, attrs.Elements), nil
	}
	if s.object == nil {
		return nil, errors.Errorf("no object backend configured for batch '%s'", attrs.Query)
	}
	return s.object.RestoreBatch(attrs.Query, attrs.EType, attrs.Config,
		attrs.Root, attrs.Elements, attrs.Ranking), nil
}

func (s *Store) replaceSnapshot(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), os.ModePerm); err != nil {
		return errors.Wrap(err, "create snapshot directory")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replace snapshot")
	}
	return nil
}
