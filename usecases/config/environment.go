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

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FromEnv overlays environment settings onto config. Unset variables leave
// the previous layer untouched.
func FromEnv(config *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "parse PORT")
		}
		config.Port = port
	}

	if enabled(os.Getenv("DEBUG")) {
		config.Debug = true
	}

	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}

	if v := os.Getenv("STORAGE_ROOT"); v != "" {
		config.Storage.Root = v
	}

	if v := os.Getenv("MARKER_FORMAT"); v != "" {
		config.Storage.MarkerFormat = v
	}

	if v := os.Getenv("MEDIA_SUFFIXES"); v != "" {
		config.Storage.MediaSuffixes = strings.Split(v, ",")
	}

	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		config.Snapshot.Path = v
	}

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		config.S3.Endpoint = v
	}

	if v, present := os.LookupEnv("S3_USE_SSL"); present {
		config.S3.UseSSL = enabled(v)
	}

	if enabled(os.Getenv("PROMETHEUS_MONITORING_ENABLED")) {
		config.Monitoring.Enabled = true
	}

	if v := os.Getenv("PROMETHEUS_MONITORING_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "parse PROMETHEUS_MONITORING_PORT")
		}
		config.Monitoring.Port = port
	}

	return nil
}

func enabled(value string) bool {
	switch value {
	case "on", "enabled", "1", "true":
		return true
	default:
		return false
	}
}
