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

// Package elementmap holds the domain types shared by the storage backends,
// the snapshot store and the query layer: a Batch is one indexed collection
// of elements, an Element is the unit handed back to clients.
package elementmap

import "context"

// Batch type tags. They discriminate the concrete backend variant of a
// snapshot record, so changing them breaks loading of existing snapshots.
const (
	BatchTypeLocal  = "local"
	BatchTypeObject = "s3"
)

// Attribute names as persisted per batch in a snapshot and as addressable
// through Attribute.
const (
	AttrQuery    = "query"
	AttrEType    = "etype"
	AttrConfig   = "config"
	AttrElements = "elements"
	AttrRoot     = "root"
	AttrRanking  = "ranking"
)

// RankingElementID is the reserved element identifier that carries ranking
// overrides for its batch. RankingFilename is the media file inside it that
// holds the ranking payload.
const (
	RankingElementID = "__RANKING"
	RankingFilename  = "rankings.json"
)

// LocalAttrs is the attribute allowlist persisted for a local batch.
func LocalAttrs() []string {
	return []string{AttrQuery, AttrEType, AttrConfig, AttrElements, AttrRoot}
}

// ObjectAttrs is the attribute allowlist persisted for an object-store
// batch. It extends the local list with the ranking overrides.
func ObjectAttrs() []string {
	return append(LocalAttrs(), AttrRanking)
}

// Batch is one indexed collection of elements. The two implementations,
// localfs.Batch and s3.Batch, differ only in how they discover and
// materialize elements; everything above them treats batches uniformly.
//
// Batches are immutable after construction: element discovery happens once
// in the backend constructor, and batches rebuilt from a snapshot trust the
// persisted element sequence instead of re-scanning storage.
type Batch interface {
	// Type returns the batch's snapshot type tag (BatchTypeLocal or
	// BatchTypeObject).
	Type() string
	Query() string
	EType() string
	Config() map[string]interface{}
	// Root is the backend-specific location handle: a directory path for
	// local batches, a bucket name for object-store batches.
	Root() string
	// Elements returns the stored element identifiers in discovery order:
	// directory paths for local batches, key prefixes for object-store
	// batches.
	Elements() []string
	Ranking() Ranking

	// Attrs lists the attributes persisted for this variant, Attribute
	// resolves one of them by name (nil for anything unknown).
	Attrs() []string
	Attribute(name string) interface{}

	// Serialize returns the batch's wire form for the element map.
	Serialize() Serialized

	// UnpackElement materializes the element at the given identifier, which
	// may be a stored identifier or a bare element id.
	UnpackElement(ctx context.Context, id string) (*Element, error)
	// GetElement resolves id against the stored element basenames and
	// unpacks the match. Zero or multiple matches yield a nil element, not
	// an error.
	GetElement(ctx context.Context, id string) (*Element, error)
	// GetElements unpacks one page of elements, reordered by the named
	// ranking when the batch carries one.
	GetElements(ctx context.Context, page, limit int, rankBy string) ([]*Element, error)
}

// Element is the smallest addressable unit of a batch. It is never
// persisted: media is re-read from storage on every request.
type Element struct {
	ID    string                 `json:"id"`
	Media map[string]interface{} `json:"media"`
}

// Serialized is the wire form of a batch in the element map. Elements are
// reduced to their basenames.
type Serialized struct {
	Query    string                 `json:"query"`
	Elements []string               `json:"elements"`
	EType    string                 `json:"etype"`
	Config   map[string]interface{} `json:"config"`
}
