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

package localfs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/elemap/elemap/entities/elementmap"
)

// Batch is a collection of elements rooted at one directory of the storage
// tree. Every descendant directory counts as an element; its media are the
// recognized structured files directly inside it.
type Batch struct {
	query    string
	etype    string
	config   map[string]interface{}
	root     string
	elements []string
	ranking  elementmap.Ranking
	suffixes []string
	logger   logrus.FieldLogger
}

// newBatch builds a batch by scanning the directory tree under root. The
// element index is established exactly once here.
func newBatch(ctx context.Context, query, etype string, config map[string]interface{},
	root string, suffixes []string, logger logrus.FieldLogger,
) (*Batch, error) {
	b := &Batch{
		query:    query,
		etype:    etype,
		config:   config,
		root:     root,
		suffixes: suffixes,
		logger:   logger,
	}

	elements, err := b.indexElements()
	if err != nil {
		return nil, errors.Wrapf(err, "index batch '%s'", query)
	}
	b.elements = elements
	b.detectRanking(ctx)

	return b, nil
}

// indexElements walks the batch root and returns every descendant
// directory, in lexical walk order. Files are not elements.
func (b *Batch) indexElements() ([]string, error) {
	var elements []string
	err := filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == b.root {
			return nil
		}
		elements = append(elements, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk batch root '%s'", b.root)
	}
	return elements, nil
}

// detectRanking loads the ranking override when the index holds the
// reserved ranking element. Ranking is optional state: any failure leaves
// the batch unranked and is only logged.
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
		Warn("proceeding without ranking override")
}

func (b *Batch) Type() string                   { return elementmap.BatchTypeLocal }
func (b *Batch) Query() string                  { return b.query }
func (b *Batch) EType() string                  { return b.etype }
func (b *Batch) Config() map[string]interface{} { return b.config }
func (b *Batch) Root() string                   { return b.root }
func (b *Batch) Elements() []string             { return b.elements }
func (b *Batch) Ranking() elementmap.Ranking    { return b.ranking }
func (b *Batch) Attrs() []string                { return elementmap.LocalAttrs() }

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
		if b.ranking == nil {
			return nil
		}
		return b.ranking
	default:
		return nil
	}
}

func (b *Batch) Serialize() elementmap.Serialized {
	basenames := make([]string, len(b.elements))
	for i, el := range b.elements {
		basenames[i] = filepath.Base(el)
	}
	return elementmap.Serialized{
		Query:    b.query,
		Elements: basenames,
		EType:    b.etype,
		Config:   b.config,
	}
}

// UnpackElement reads the element directory at id, which is either a stored
// element path or a bare id underneath the batch root, and parses every
// recognized media file directly inside it.
func (b *Batch) UnpackElement(ctx context.Context, id string) (*elementmap.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "unpack element '%s'", id)
	}

	dir := id
	if !strings.HasPrefix(dir, b.root) {
		dir = filepath.Join(b.root, id)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read element '%s'", dir)
	}

	media := map[string]interface{}{}
	for _, entry := range entries {
		if entry.IsDir() || !elementmap.RecognizedSuffix(entry.Name(), b.suffixes) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "read media '%s'", entry.Name())
		}

		content, err := elementmap.ParseMedia(entry.Name(), data)
		if err != nil {
			return nil, err
		}
		media[entry.Name()] = content
	}

	return &elementmap.Element{ID: filepath.Base(dir), Media: media}, nil
}

// GetElement unpacks the element whose basename equals id. Anything other
// than exactly one match resolves to no element.
func (b *Batch) GetElement(ctx context.Context, id string) (*elementmap.Element, error) {
	var match string
	matches := 0
	for _, el := range b.elements {
		if filepath.Base(el) == id {
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
