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

// Package config assembles the server configuration from an optional config
// file, the environment and command line flags, each layer overriding the
// previous one.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/elemap/elemap/entities/elementmap"
	"github.com/elemap/elemap/entities/marker"
	"github.com/elemap/elemap/usecases/monitoring"
)

const (
	DefaultConfigFile   = "./elemap.conf.json"
	DefaultPort         = 5000
	DefaultSnapshotPath = "./data/elementmap.snap"
	DefaultS3Endpoint   = "s3.amazonaws.com"
)

// Flags are the command line options of the server binary. Anything not
// settable here comes from the config file or the environment.
type Flags struct {
	ConfigFile  string `long:"config-file" description:"path to a json or yaml config file"`
	Port        int    `long:"port" description:"port the query api listens on"`
	StorageRoot string `long:"storage-root" description:"directory or bucket holding the batches"`
	Debug       bool   `long:"debug" description:"enable debug logging"`
}

// Config is the effective server configuration.
type Config struct {
	Port       int               `json:"port" yaml:"port"`
	Debug      bool              `json:"debug" yaml:"debug"`
	Storage    Storage           `json:"storage" yaml:"storage"`
	S3         S3                `json:"s3" yaml:"s3"`
	Snapshot   Snapshot          `json:"snapshot" yaml:"snapshot"`
	Monitoring monitoring.Config `json:"monitoring" yaml:"monitoring"`
}

// Storage names the backend holding the batches. Backend takes the batch
// type tags, "local" or "s3"; Root is a directory for the former and a
// bucket for the latter.
type Storage struct {
	Backend       string   `json:"backend" yaml:"backend"`
	Root          string   `json:"root" yaml:"root"`
	MarkerFormat  string   `json:"marker_format" yaml:"marker_format"`
	MediaSuffixes []string `json:"media_suffixes" yaml:"media_suffixes"`
}

type S3 struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	UseSSL   bool   `json:"use_ssl" yaml:"use_ssl"`
}

type Snapshot struct {
	Path string `json:"path" yaml:"path"`
}

func Defaults() Config {
	return Config{
		Port: DefaultPort,
		Storage: Storage{
			Backend:      elementmap.BatchTypeLocal,
			MarkerFormat: string(marker.FormatINI),
		},
		S3: S3{
			Endpoint: DefaultS3Endpoint,
			UseSSL:   true,
		},
		Snapshot: Snapshot{
			Path: DefaultSnapshotPath,
		},
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("port must be in 1..65535, got %d", c.Port)
	}
	switch c.Storage.Backend {
	case elementmap.BatchTypeLocal, elementmap.BatchTypeObject:
	default:
		return errors.Errorf("storage backend must be '%s' or '%s', got '%s'",
			elementmap.BatchTypeLocal, elementmap.BatchTypeObject, c.Storage.Backend)
	}
	if c.Storage.Root == "" {
		return errors.New("storage root must be set")
	}
	switch marker.Format(c.Storage.MarkerFormat) {
	case marker.FormatINI, marker.FormatYAML:
	default:
		return errors.Errorf("marker format must be '%s' or '%s', got '%s'",
			marker.FormatINI, marker.FormatYAML, c.Storage.MarkerFormat)
	}
	if c.Snapshot.Path == "" {
		return errors.New("snapshot path must be set")
	}
	if c.Monitoring.Enabled && (c.Monitoring.Port <= 0 || c.Monitoring.Port > 65535) {
		return errors.Errorf("monitoring port must be in 1..65535, got %d", c.Monitoring.Port)
	}
	return nil
}

// ServerConfig wraps the effective Config for consumers that want the
// loading machinery alongside it.
type ServerConfig struct {
	Config Config
}

// LoadConfig builds the configuration in order: defaults, config file,
// environment, flags, then validates the result. A missing file is only an
// error when it was named explicitly.
func (s *ServerConfig) LoadConfig(flags Flags, logger logrus.FieldLogger) error {
	s.Config = Defaults()

	name := flags.ConfigFile
	explicit := name != ""
	if !explicit {
		name = DefaultConfigFile
	}

	data, err := os.ReadFile(name)
	switch {
	case err != nil && explicit:
		return errors.Wrapf(err, "read config file '%s'", name)
	case err != nil:
		logger.WithField("action", "config_load").
			WithField("config_file_path", name).
			Info("no config file present, relying on environment and flags")
	default:
		if err := s.parseConfigFile(data, name); err != nil {
			return err
		}
		logger.WithField("action", "config_load").
			WithField("config_file_path", name).
			Info("config file loaded")
	}

	if err := FromEnv(&s.Config); err != nil {
		return err
	}
	s.fromFlags(flags)

	if err := s.Config.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

func (s *ServerConfig) parseConfigFile(data []byte, name string) error {
	switch ext := filepath.Ext(name); ext {
	case ".json":
		if err := json.Unmarshal(data, &s.Config); err != nil {
			return errors.Wrapf(err, "parse config file '%s'", name)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s.Config); err != nil {
			return errors.Wrapf(err, "parse config file '%s'", name)
		}
	default:
		return errors.Errorf("config file '%s' has unsupported extension %q, use json or yaml",
			name, ext)
	}
	return nil
}

func (s *ServerConfig) fromFlags(flags Flags) {
	if flags.Port > 0 {
		s.Config.Port = flags.Port
	}
	if flags.StorageRoot != "" {
		s.Config.Storage.Root = flags.StorageRoot
	}
	if flags.Debug {
		s.Config.Debug = true
	}
}
