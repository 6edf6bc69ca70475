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
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("flags complete the defaults", func(t *testing.T) {
		clearEnv(t)
		var sc ServerConfig
		err := sc.LoadConfig(Flags{StorageRoot: "/sata/elements"}, nullLogger())
		require.Nil(t, err)

		assert.Equal(t, DefaultPort, sc.Config.Port)
		assert.Equal(t, "local", sc.Config.Storage.Backend)
		assert.Equal(t, "/sata/elements", sc.Config.Storage.Root)
		assert.Equal(t, "ini", sc.Config.Storage.MarkerFormat)
		assert.Equal(t, DefaultSnapshotPath, sc.Config.Snapshot.Path)
		assert.Equal(t, DefaultS3Endpoint, sc.Config.S3.Endpoint)
		assert.True(t, sc.Config.S3.UseSSL)
		assert.False(t, sc.Config.Monitoring.Enabled)
	})

	t.Run("defaults alone miss the storage root", func(t *testing.T) {
		clearEnv(t)
		var sc ServerConfig
		err := sc.LoadConfig(Flags{}, nullLogger())
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "storage root must be set")
	})

	t.Run("environment overrides the file, flags override both", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "elemap.conf.json")
		content := `{
			"port": 6000,
			"storage": {"backend": "local", "root": "/from/file"},
			"snapshot": {"path": "./file.snap"}
		}`
		require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
		t.Setenv("STORAGE_ROOT", "/from/env")

		var sc ServerConfig
		err := sc.LoadConfig(Flags{ConfigFile: path, Port: 7000}, nullLogger())
		require.Nil(t, err)

		assert.Equal(t, 7000, sc.Config.Port)
		assert.Equal(t, "/from/env", sc.Config.Storage.Root)
		assert.Equal(t, "./file.snap", sc.Config.Snapshot.Path)
		assert.Equal(t, "ini", sc.Config.Storage.MarkerFormat)
	})

	t.Run("reads yaml config files", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "elemap.conf.yaml")
		content := "port: 6000\nstorage:\n  backend: s3\n  root: elements\n  marker_format: yaml\n"
		require.Nil(t, os.WriteFile(path, []byte(content), 0o644))

		var sc ServerConfig
		err := sc.LoadConfig(Flags{ConfigFile: path}, nullLogger())
		require.Nil(t, err)

		assert.Equal(t, 6000, sc.Config.Port)
		assert.Equal(t, "s3", sc.Config.Storage.Backend)
		assert.Equal(t, "elements", sc.Config.Storage.Root)
		assert.Equal(t, "yaml", sc.Config.Storage.MarkerFormat)
	})

	t.Run("explicitly named but missing file fails", func(t *testing.T) {
		clearEnv(t)
		var sc ServerConfig
		err := sc.LoadConfig(Flags{ConfigFile: "/nope/absent.json"}, nullLogger())
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("unsupported config file extension fails", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "elemap.conf.toml")
		require.Nil(t, os.WriteFile(path, []byte("port = 6000"), 0o644))

		var sc ServerConfig
		err := sc.LoadConfig(Flags{ConfigFile: path}, nullLogger())
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "unsupported extension")
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Defaults()
		c.Storage.Root = "/sata/elements"
		return c
	}

	t.Run("accepts a complete config", func(t *testing.T) {
		c := valid()
		assert.Nil(t, c.Validate())
	})

	t.Run("rejects unknown backends", func(t *testing.T) {
		c := valid()
		c.Storage.Backend = "ftp"
		err := c.Validate()
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "storage backend must be")
	})

	t.Run("rejects unknown marker formats", func(t *testing.T) {
		c := valid()
		c.Storage.MarkerFormat = "toml"
		err := c.Validate()
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "marker format must be")
	})

	t.Run("rejects out-of-range ports", func(t *testing.T) {
		c := valid()
		c.Port = 0
		require.NotNil(t, c.Validate())

		c = valid()
		c.Port = 70000
		require.NotNil(t, c.Validate())
	})

	t.Run("rejects an empty snapshot path", func(t *testing.T) {
		c := valid()
		c.Snapshot.Path = ""
		require.NotNil(t, c.Validate())
	})

	t.Run("monitoring needs a port when enabled", func(t *testing.T) {
		c := valid()
		c.Monitoring.Enabled = true
		err := c.Validate()
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "monitoring port")
	})
}

func TestFromEnv(t *testing.T) {
	t.Run("overlays every supported variable", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "8080")
		t.Setenv("DEBUG", "on")
		t.Setenv("STORAGE_BACKEND", "s3")
		t.Setenv("STORAGE_ROOT", "elements")
		t.Setenv("MARKER_FORMAT", "yaml")
		t.Setenv("MEDIA_SUFFIXES", ".json,.yaml")
		t.Setenv("SNAPSHOT_PATH", "/var/lib/elemap/map.snap")
		t.Setenv("S3_ENDPOINT", "minio.internal:9000")
		t.Setenv("S3_USE_SSL", "false")
		t.Setenv("PROMETHEUS_MONITORING_ENABLED", "true")
		t.Setenv("PROMETHEUS_MONITORING_PORT", "2112")

		c := Defaults()
		require.Nil(t, FromEnv(&c))

		assert.Equal(t, 8080, c.Port)
		assert.True(t, c.Debug)
		assert.Equal(t, "s3", c.Storage.Backend)
		assert.Equal(t, "elements", c.Storage.Root)
		assert.Equal(t, "yaml", c.Storage.MarkerFormat)
		assert.Equal(t, []string{".json", ".yaml"}, c.Storage.MediaSuffixes)
		assert.Equal(t, "/var/lib/elemap/map.snap", c.Snapshot.Path)
		assert.Equal(t, "minio.internal:9000", c.S3.Endpoint)
		assert.False(t, c.S3.UseSSL)
		assert.True(t, c.Monitoring.Enabled)
		assert.Equal(t, 2112, c.Monitoring.Port)
	})

	t.Run("unset variables keep the previous layer", func(t *testing.T) {
		clearEnv(t)
		c := Defaults()
		c.Storage.Root = "/kept"
		require.Nil(t, FromEnv(&c))
		assert.Equal(t, "/kept", c.Storage.Root)
		assert.True(t, c.S3.UseSSL)
	})

	t.Run("non-numeric port fails", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "eighty")
		c := Defaults()
		err := FromEnv(&c)
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "parse PORT")
	})
}

// clearEnv blanks every variable FromEnv reads, so tests never see the
// invoking shell's settings.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "DEBUG", "STORAGE_BACKEND", "STORAGE_ROOT", "MARKER_FORMAT",
		"MEDIA_SUFFIXES", "SNAPSHOT_PATH", "S3_ENDPOINT",
		"PROMETHEUS_MONITORING_ENABLED", "PROMETHEUS_MONITORING_PORT",
	} {
		t.Setenv(name, "")
	}
	// S3_USE_SSL is presence-sensitive, so blanking is not enough.
	if _, present := os.LookupEnv("S3_USE_SSL"); present {
		t.Setenv("S3_USE_SSL", "")
		require.Nil(t, os.Unsetenv("S3_USE_SSL"))
	}
}

func nullLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}
