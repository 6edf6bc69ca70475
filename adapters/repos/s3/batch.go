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
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/elemap/elemap/entities/elementmap"
)

// Batch is a group of elements sharing a key prefix in the bucket. Its
// element list holds full prefixes ending in "/", the way the store reports
// hierarchical folders one level below the batch.
type Batch struct {
	client   *minio.Client
	query    string
	etype    string
	config   map[string]interface{}
	root     string
	elements []string
	ranking  elementmap.Ranking
	suffixes []string
	logger   logrus.FieldLogger
}

func newBatch(ctx context.Context, client *minio.Client, query, etype string,
	config map[string]interface{}, bucket string, suffixes []string,
	logger logrus.FieldLogger,
) (*Batch, error) {
	b := &Batch{
		client:   client,
		query:    query,
		etype:    etype,
		config:   config,
		root:     bucket,
		ranking:  elementmap.Ranking{},
		suffixes: suffixes,
		logger:   logger,
	}

	elements, err := b.indexElements(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "index batch '%s'", query)
	}
	b.elements = elements
	b.detectRanking(ctx)

	return b, nil
}

// indexElements lists the batch prefix one level deep. Every common prefix
// below it is one element; plain objects, the marker among them, are not.
func (b *Batch) indexElements(ctx context.Context) ([]string, error) {
	keys, err := listKeys(ctx, b.client, b.root, b.query, false)
	if err != nil {
		return nil, err
	}
	var elements []string
	for _, key := range keys {
		if strings.HasSuffix(key, "/") && key != b.query {
			elements = append(elements, key)
		}
	}
	return elements, nil
}

// detectRanking unpacks the reserved ranking element if the index holds one.
// A broken override only disables ranked paging, the batch stays usable.
func (b *Batch) detectRanking(ctx context.Context) {
	found := false
	for _, el := range b.elements {
		if strings.Contains(el, elementmap.RankingElementID) {
			found = true
			break
		}
	}
	if !found {
		return
	}

	unpacked, err := b.UnpackElement(ctx, elementmap.RankingElementID)
	if err != nil {
		b.rankingWarn(errors.Wrap(err, "unpack ranking element"))
		return
	}

	payload, ok := unpacked.Media[elementmap.RankingFilename]
	if !ok {
		b.rankingWarn(errors.Errorf("ranking element holds no '%s'", elementmap.RankingFilename))
		return
	}

	ranking, err := elementmap.RankingFromMedia(payload)
	if err != nil {
		b.rankingWarn(err)
		return
	}

	b.ranking = ranking
}

func (b *Batch) rankingWarn(err error) {
	b.logger.WithField("action", "ranking_detect").
		WithField("batch", b.query).
		WithError(err).
		Warning("proceeding without ranking override")
}

func (b *Batch) Type() string                   { return elementmap.BatchTypeObject }
func (b *Batch) Query() string                  { return b.query }
func (b *Batch) EType() string                  { return b.etype }
func (b *Batch) Config() map[string]interface{} { return b.config }
func (b *Batch) Root() string                   { return b.root }
func (b *Batch) Elements() []string             { return b.elements }
func (b *Batch) Ranking() elementmap.Ranking    { return b.ranking }
func (b *Batch) Attrs() []string                { return elementmap.ObjectAttrs() }

func (b *Batch) Attribute(name string) interface{} {
	switch name {
	case elementmap.AttrQuery:
		return b.query
	case elementmap.AttrEType:
		return b.etype
	case elementmap.AttrConfig:
		return b.config
	case elementmap.AttrElements:
		return b.elements
	case elementmap.AttrRoot:
		return b.root
	case elementmap.AttrRanking:
		return b.ranking
	default:
		return nil
	}
}

// Serialize reduces the batch to its client-facing shape, with element
// prefixes cut down to their final path segment.
func (b *Batch) Serialize() elementmap.Serialized {
	basenames := make([]string, len(b.elements))
	for i, el := range b.elements {
		basenames[i] = path.Base(el)
	}
	return elementmap.Serialized{
		Query:    b.query,
		Elements: basenames,
		EType:    b.etype,
		Config:   b.config,
	}
}

// UnpackElement fetches every recognized media object below the element
// prefix and parses it. The id is either a stored prefix out of the element
// list or a bare element id, bare ids resolve against the batch query.
func (b *Batch) UnpackElement(ctx context.Context, id string) (*elementmap.Element, error) {
	prefix := id
	if !strings.HasPrefix(prefix, b.query) {
		prefix = b.query + id
	}

	keys, err := listKeys(ctx, b.client, b.root, prefix, true)
	if err != nil {
		return nil, err
	}

	media := map[string]interface{}{}
	for _, key := range keys {
		if !elementmap.RecognizedSuffix(key, b.suffixes) {
			continue
		}

		data, err := readObject(ctx, b.client, b.root, key)
		if err != nil {
			return nil, err
		}

		name := path.Base(key)
		content, err := elementmap.ParseMedia(name, data)
		if err != nil {
			return nil, err
		}
		media[name] = content
	}

	return &elementmap.Element{ID: path.Base(prefix), Media: media}, nil
}

// GetElement resolves id against the final segment of the stored element
// prefixes. Zero or multiple matches yield a nil element, not an error.
func (b *Batch) GetElement(ctx context.Context, id string) (*elementmap.Element, error) {
	var match string
	matches := 0
	for _, el := range b.elements {
		if path.Base(el) == id {
			match = el
			matches++
		}
	}
	if matches != 1 {
		return nil, nil
	}
	return b.UnpackElement(ctx, match)
}

// GetElements unpacks one page of elements. When rankBy names a key of the
// batch's ranking, the ranked id list replaces the natural element order
// before the page is cut.
func (b *Batch) GetElements(ctx context.Context, page, limit int, rankBy string) ([]*elementmap.Element, error) {
	ids := b.elements
	if ranked, ok := b.ranking[rankBy]; ok {
		ids = ranked
	}
	ids = elementmap.PageSlice(ids, page, limit)

	elements := make([]*elementmap.Element, 0, len(ids))
	for _, id := range ids {
		el, err := b.UnpackElement(ctx, id)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}
