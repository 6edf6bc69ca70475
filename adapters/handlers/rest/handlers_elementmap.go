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
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	ent "github.com/elemap/elemap/entities/elementmap"
)

const (
	apiVersion    = "v0.1"
	defaultPage   = 0
	defaultLimit  = 10
	defaultRankBy = "tank"
)

// manager is the slice of the elementmap manager the handlers need.
type manager interface {
	ElementMap(ctx context.Context) ([]ent.Serialized, error)
	Element(ctx context.Context, query, id string) (*ent.Element, error)
	Elements(ctx context.Context, query string, page, limit int, rankBy string) ([]*ent.Element, error)
	ElementsByID(ctx context.Context, query string, ids []string) ([]*ent.Element, error)
	BatchAttribute(ctx context.Context, query, attr string) (interface{}, error)
	BatchAttributes(ctx context.Context, attr string) ([]interface{}, error)
}

type elementMapHandlers struct {
	manager manager
	logger  logrus.FieldLogger
}

// elementMap serves the serialized batch overview.
func (h *elementMapHandlers) elementMap() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			h.methodNotAllowed(w)
			return
		}
		serialized, err := h.manager.ElementMap(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, serialized)
	})
}

// batch serves single elements and element pages on GET, and bulk lookups
// on POST. Unresolved batches and elements encode as null.
func (h *elementMapHandlers) batch() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.getBatch(w, r)
		case http.MethodPost:
			h.postBatch(w, r)
		default:
			h.methodNotAllowed(w)
		}
	})
}

func (h *elementMapHandlers) getBatch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := params.Get("q")

	if el := params.Get("el"); el != "" {
		element, err := h.manager.Element(r.Context(), query, el)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, element)
		return
	}

	page, err := intParam(params, "page", defaultPage)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := intParam(params, "limit", defaultLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rankBy := params.Get("rank_by")
	if rankBy == "" {
		rankBy = defaultRankBy
	}

	elements, err := h.manager.Elements(r.Context(), query, page, limit, rankBy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, elements)
}

func (h *elementMapHandlers) postBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query    string   `json:"query"`
		Elements []string `json:"elements"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, errors.Wrap(err, "decode request body").Error(),
			http.StatusBadRequest)
		return
	}

	elements, err := h.manager.ElementsByID(r.Context(), body.Query, body.Elements)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, elements)
}

// batchAttribute reads one persisted attribute: of a single batch when q is
// given, of every batch when it is not.
func (h *elementMapHandlers) batchAttribute() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			h.methodNotAllowed(w)
			return
		}
		params := r.URL.Query()
		attr := params.Get("a")

		queries, queried := params["q"]
		if !queried {
			values, err := h.manager.BatchAttributes(r.Context(), attr)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			h.writeJSON(w, values)
			return
		}

		value, err := h.manager.BatchAttribute(r.Context(), queries[0], attr)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, value)
	})
}

// index answers the API root. Anything but the exact root path is a 404,
// the mux routes everything it knows about before this handler.
func (h *elementMapHandlers) index() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			h.methodNotAllowed(w)
			return
		}
		h.writeJSON(w, map[string]string{"api": apiVersion})
	})
}

func (h *elementMapHandlers) methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "405 Method not Allowed", http.StatusMethodNotAllowed)
}

func (h *elementMapHandlers) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithField("action", "restapi_response").
			WithError(err).
			Error("write response")
	}
}

func intParam(params url.Values, name string, fallback int) (int, error) {
	raw := params.Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Errorf("parameter '%s' must be an integer, got '%s'", name, raw)
	}
	return value, nil
}
