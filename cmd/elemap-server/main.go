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

package main

import (
	"context"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/elemap/elemap/adapters/handlers/rest"
	"github.com/elemap/elemap/adapters/repos/localfs"
	"github.com/elemap/elemap/adapters/repos/s3"
	"github.com/elemap/elemap/adapters/repos/snapshot"
	ent "github.com/elemap/elemap/entities/elementmap"
	enterrors "github.com/elemap/elemap/entities/errors"
	"github.com/elemap/elemap/entities/marker"
	"github.com/elemap/elemap/usecases/config"
	"github.com/elemap/elemap/usecases/elementmap"
	"github.com/elemap/elemap/usecases/monitoring"
)

func main() {
	var f config.Flags
	parser := flags.NewParser(&f, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	log := logger(f.Debug)

	var serverConfig config.ServerConfig
	if err := serverConfig.LoadConfig(f, log); err != nil {
		log.WithField("action", "startup").WithError(err).Fatal("invalid configuration")
	}
	cfg := serverConfig.Config
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)

	format := marker.Format(cfg.Storage.MarkerFormat)

	var (
		scanner        elementmap.Scanner
		localRestorer  snapshot.LocalRestorer
		objectRestorer snapshot.ObjectRestorer
	)
	switch cfg.Storage.Backend {
	case ent.BatchTypeLocal:
		local := localfs.NewScanner(cfg.Storage.Root, format,
			cfg.Storage.MediaSuffixes, log)
		scanner = local
		localRestorer = local
	case ent.BatchTypeObject:
		client, err := s3.NewClient(s3.Config{
			Endpoint: cfg.S3.Endpoint,
			UseSSL:   cfg.S3.UseSSL,
		})
		if err != nil {
			log.WithField("action", "startup").WithError(err).
				Fatal("create object-store client")
		}
		object := s3.NewScanner(client, cfg.Storage.Root, format,
			cfg.Storage.MediaSuffixes, log)
		scanner = object
		objectRestorer = object
	}

	store := snapshot.NewStore(cfg.Snapshot.Path, localRestorer, objectRestorer, log)
	manager := elementmap.NewManager(scanner, store, metrics, log)

	if err := manager.BuildIndex(context.Background()); err != nil {
		log.WithField("action", "startup").WithError(err).
			Fatal("build element map index")
	}

	if cfg.Monitoring.Enabled {
		enterrors.GoWrapper(func() {
			if err := monitoring.Serve(cfg.Monitoring, registry, log); err != nil {
				log.WithField("action", "monitoring_startup").WithError(err).
					Fatal("serve metrics")
			}
		}, log)
	}

	if err := rest.Serve(cfg, manager, log); err != nil {
		log.WithField("action", "restapi_startup").WithError(err).
			Fatal("serve element map api")
	}
}

// Defaults to log level info and json format. The debug flag outranks
// LOG_LEVEL, the same way flags outrank the environment in config loading.
func logger(debug bool) *logrus.Logger {
	log := logrus.New()
	if os.Getenv("LOG_FORMAT") != "text" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "trace":
		log.SetLevel(logrus.TraceLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
