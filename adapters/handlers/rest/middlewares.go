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

package rest

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// setupGlobalMiddleware wraps the API mux. The order matters: preflight
// short-circuits OPTIONS before anything else runs, request logging sees
// every answered request, CORS headers go onto all of them.
func setupGlobalMiddleware(handler http.Handler, logger logrus.FieldLogger) http.Handler {
	handleCORS := cors.New(cors.Options{
		OptionsPassthrough: true,
		AllowedMethods:     []string{http.MethodGet, http.MethodPost},
	}).Handler

	handler = handleCORS(handler)
	handler = addLogging(handler, logger)
	handler = addPreflight(handler)
	return handler
}

func addLogging(next http.Handler, logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured := httpsnoop.CaptureMetrics(next, w, r)
		logger.WithFields(logrus.Fields{
			"action":   "restapi_request",
			"method":   r.Method,
			"url":      r.URL.String(),
			"code":     captured.Code,
			"duration": captured.Duration,
		}).Debug("handled request")
	})
}

func addPreflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "*")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			return
		}
		next.ServeHTTP(w, r)
	})
}
