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

import "github.com/pkg/errors"

// Ranking maps a ranking key to the element identifiers in ranked order.
// When a query names one of the keys, its id list replaces the natural
// element order before pagination.
type Ranking map[string][]string

// RankingFromMedia converts the parsed content of a ranking payload file
// into a Ranking. The payload must be an object of id lists.
func RankingFromMedia(v interface{}) (Ranking, error) {
	payload, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("ranking payload is %T, want an object of id lists", v)
	}

	ranking := make(Ranking, len(payload))
	for key, raw := range payload {
		list, ok := raw.([]interface{})
		if !ok {
			return nil, errors.Errorf("ranking %q is %T, want a list of ids", key, raw)
		}

		ids := make([]string, len(list))
		for i, item := range list {
			id, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("ranking %q entry %d is %T, want a string id", key, i, item)
			}
			ids[i] = id
		}
		ranking[key] = ids
	}

	return ranking, nil
}
