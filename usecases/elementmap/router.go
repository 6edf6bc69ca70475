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

// Package elementmap orchestrates the element map: it builds the index at
// startup and answers every query by reloading batches from the snapshot.
package elementmap

import (
	"strings"

	ent "github.com/elemap/elemap/entities/elementmap"
)

// BatchFromQuery resolves a query string against the batch set. Matching
// ignores leading and trailing slashes on both sides, so "batchA",
// "/batchA/" and an object-store prefix "batchA/" all meet. Exactly one
// match resolves; zero or several, and the empty query, resolve to nil.
func BatchFromQuery(batches []ent.Batch, query string) ent.Batch {
	if query == "" {
		return nil
	}
	want := strings.Trim(query, "/")

	var match ent.Batch
	matches := 0
	for _, batch := range batches {
		if strings.Trim(batch.Query(), "/") == want {
			match = batch
			matches++
		}
	}
	if matches != 1 {
		return nil
	}
	return match
}
