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

// Package marker reads the per-batch metadata marker that turns a storage
// location into an indexable batch. Two formats are in circulation: the
// original flat ini file which only declares the element type, and the
// structured yaml file which adds a free-form config payload. A process
// uses one format for the whole index; the scanner picks it from its
// configuration.
package marker

import (
	"os"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Filename is the marker file expected at every batch root.
const Filename = ".elemap"

type Format string

const (
	FormatINI  Format = "ini"
	FormatYAML Format = "yaml"
)

// Marker is the parsed batch metadata. Config is nil for the ini format,
// which has no way to express it.
type Marker struct {
	EType  string                 `yaml:"etype"`
	Config map[string]interface{} `yaml:"config"`
}

// Parse reads a marker from raw file content. A marker that cannot be
// parsed, or that lacks an element type, is an error; the caller decides
// whether that skips the batch or aborts the scan.
func Parse(data []byte, format Format) (*Marker, error) {
	switch format {
	case FormatINI:
		return parseINI(data)
	case FormatYAML:
		return parseYAML(data)
	default:
		return nil, errors.Errorf("unsupported marker format %q", format)
	}
}

// ReadFile reads and parses the marker file at path.
func ReadFile(path string, format Format) (*Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read marker '%s'", path)
	}
	return Parse(data, format)
}

func parseINI(data []byte) (*Marker, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse ini marker")
	}

	etype := file.Section("etype").Key("etype").String()
	if etype == "" {
		return nil, errors.New("ini marker declares no etype")
	}

	return &Marker{EType: etype}, nil
}

func parseYAML(data []byte) (*Marker, error) {
	var marker Marker
	if err := yaml.Unmarshal(data, &marker); err != nil {
		return nil, errors.Wrap(err, "parse yaml marker")
	}

	if marker.EType == "" {
		return nil, errors.New("yaml marker declares no etype")
	}

	return &marker, nil
}
