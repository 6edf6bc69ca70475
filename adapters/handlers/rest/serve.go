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

// Package rest is the HTTP query surface of the element map: a hand-wired
// mux over the elementmap manager, JSON in and out.
package rest

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/elemap/elemap/usecases/config"
)

// Handler assembles the full middleware-wrapped API handler. It is split
// from Serve so tests can drive it through httptest.
func Handler(manager manager, logger logrus.FieldLogger) http.Handler {
	handlers := &elementMapHandlers{manager: manager, logger: logger}

	mux := http.NewServeMux()
	mux.Handle("/elementmap", handlers.elementMap())
	mux.Handle("/batch", handlers.batch())
	mux.Handle("/batch_attribute", handlers.batchAttribute())
	mux.Handle("/", handlers.index())

	return setupGlobalMiddleware(mux, logger)
}

// Serve blocks on the API listener.
func Serve(cfg config.Config, manager manager, logger logrus.FieldLogger) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.WithField("action", "restapi_startup").
		WithField("address", addr).
		Info("serving element map api")
	return http.ListenAndServe(addr, Handler(manager, logger))
}
