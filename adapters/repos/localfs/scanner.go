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

// Package localfs indexes batches living in a local directory tree. Every
// immediate subdirectory of the storage root that carries a marker file
// becomes a batch; every descendant directory of a batch becomes an
// element.
package localfs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/elemap/elemap/entities/elementmap"
	"github.com/elemap/elemap/entities/marker"
)

type Scanner struct {
	root     string
	format   marker.Format
	suffixes []string
	logger   logrus.FieldLogger
}

func NewScanner(root string, format marker.Format, suffixes []string, logger logrus.FieldLogger) *Scanner {
	if len(suffixes) == 0 {
		suffixes = elementmap.DefaultMediaSuffixes
	}
	return &Scanner{
		root:     root,
		format:   format,
		suffixes: suffixes,
		logger:   logger,
	}
}

// Batches discovers every batch under the storage root. A subdirectory
// whose marker cannot be parsed is skipped and reported; a failure to read
// the root or to index a discovered batch aborts the scan.
func (s *Scanner) Batches(ctx context.Context) ([]elementmap.Batch, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.Wrapf(err, "read storage root '%s'", s.root)
	}

	var batches []elementmap.Batch
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		batchRoot := filepath.Join(s.root, entry.Name())
		markerPath := filepath.Join(batchRoot, marker.Filename)
		if _, err := os.Stat(markerPath); errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "stat marker '%s'", markerPath)
		}

		m, err := marker.ReadFile(markerPath, s.format)
		if err != nil {
			s.logger.WithField("action", "batch_discovery").
				WithField("batch_root", batchRoot).
				WithError(err).
				Warn("skipping batch with unreadable marker")
			continue
		}

		batch, err := newBatch(ctx, entry.Name(), m.EType, m.Config, batchRoot, s.suffixes, s.logger)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}

	return batches, nil
}

// RestoreBatch rebuilds a local batch from its snapshot attributes. The
// persisted element sequence is trusted as is; storage is not touched.
func (s *Scanner) RestoreBatch(query, etype string, config map[string]interface{},
	root string, elements []string,
) elementmap.Batch {
	return &Batch{
		query:    query,
		etype:    etype,
		config:   config,
		root:     root,
		elements: elements,
		suffixes: s.suffixes,
		logger:   s.logger,
	}
}
