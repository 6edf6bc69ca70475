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

package s3

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/elemap/elemap/entities/elementmap"
	"github.com/elemap/elemap/entities/marker"
)

// Scanner discovers batches in a bucket by listing every key and treating
// each one that ends in the marker filename as the root of a batch.
type Scanner struct {
	client   *minio.Client
	bucket   string
	format   marker.Format
	suffixes []string
	logger   logrus.FieldLogger
}

func NewScanner(client *minio.Client, bucket string, format marker.Format,
	suffixes []string, logger logrus.FieldLogger,
) *Scanner {
	if len(suffixes) == 0 {
		suffixes = elementmap.DefaultMediaSuffixes
	}
	return &Scanner{
		client:   client,
		bucket:   bucket,
		format:   format,
		suffixes: suffixes,
		logger:   logger,
	}
}

// Batches walks the entire bucket once. A batch whose marker cannot be
// parsed is skipped with a warning, a batch whose elements cannot be listed
// aborts the scan.
func (s *Scanner) Batches(ctx context.Context) ([]elementmap.Batch, error) {
	if err := s.findBucket(ctx); err != nil {
		return nil, err
	}

	keys, err := listKeys(ctx, s.client, s.bucket, "", true)
	if err != nil {
		return nil, err
	}

	var batches []elementmap.Batch
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+marker.Filename) {
			continue
		}
		data, err := readObject(ctx, s.client, s.bucket, key)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch marker '%s'", key)
		}
		m, err := marker.Parse(data, s.format)
		if err != nil {
			s.logger.WithField("action", "batch_discovery").
				WithField("marker_key", key).
				WithError(err).
				Warning("skipping batch with unreadable marker")
			continue
		}
		query := strings.TrimSuffix(key, marker.Filename)
		batch, err := newBatch(ctx, s.client, query, m.EType, m.Config,
			s.bucket, s.suffixes, s.logger)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// RestoreBatch rebuilds a batch from persisted attributes without touching
// the bucket. The ranking override was detected at scan time and travels
// with the snapshot, so no object is fetched here.
func (s *Scanner) RestoreBatch(query, etype string, config map[string]interface{},
	root string, elements []string, ranking elementmap.Ranking,
) elementmap.Batch {
	return &Batch{
		client:   s.client,
		query:    query,
		etype:    etype,
		config:   config,
		root:     root,
		elements: elements,
		ranking:  ranking,
		suffixes: s.suffixes,
		logger:   s.logger,
	}
}

func (s *Scanner) findBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, "find bucket")
	}
	if !ok {
		return errors.Errorf("bucket '%s' does not exist", s.bucket)
	}
	return nil
}

func listKeys(ctx context.Context, client *minio.Client, bucket, prefix string,
	recursive bool,
) ([]string, error) {
	var keys []string
	err := withRetry(ctx, func() error {
		keys = keys[:0]
		objects := client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: recursive,
		})
		for object := range objects {
			if object.Err != nil {
				return object.Err
			}
			keys = append(keys, object.Key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list objects under '%s'", prefix)
	}
	return keys, nil
}

func readObject(ctx context.Context, client *minio.Client, bucket, key string) ([]byte, error) {
	var data []byte
	err := withRetry(ctx, func() error {
		object, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return err
		}
		defer object.Close()
		data, err = io.ReadAll(object)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get object '%s'", key)
	}
	return data, nil
}
