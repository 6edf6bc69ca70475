//       _
//   ___| | ___ _ __ ___   __ _ _ __
//  / _ \ |/ _ \ '_ ` _ \ / _` | '_ \
// |  __/ |  __/ | | | | | (_| | |_) |
//  \___|_|\___|_| |_| |_|\__,_| .__/
//                              |_|
//
//  Copyright © 2019 - 2026 Elemap B.V. All rights reserved.
//
//  CONTACT: hello@elemap.io
//

package elementmap

import (
	"encoding/json"
	"path"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultMediaSuffixes is the suffix set recognized as structured media
// when nothing else is configured.
var DefaultMediaSuffixes = []string{".json"}

// RecognizedSuffix reports whether the file name carries one of the
// configured structured-media suffixes.
func RecognizedSuffix(name string, suffixes []string) bool {
	ext := path.Ext(name)
	for _, suffix := range suffixes {
		if ext == suffix {
			return true
		}
	}
	return false
}

// ParseMedia parses one media file into its structured content, dispatching
// on the file suffix.
func ParseMedia(name string, data []byte) (interface{}, error) {
	var content interface{}
	switch ext := path.Ext(name); ext {
	case ".json":
		if err := json.Unmarshal(data, &content); err != nil {
			return nil, errors.Wrapf(err, "parse json media '%s'", name)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &content); err != nil {
			return nil, errors.Wrapf(err, "parse yaml media '%s'", name)
		}
	default:
		return nil, errors.Errorf("unrecognized media suffix %q in '%s'", ext, name)
	}
	return content, nil
}
