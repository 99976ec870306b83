// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/frontlinehq/frontline/internal/metrics"
)

// prometheusMetrics records request count and duration per route pattern.
// The chi route pattern ("/api/v1/events") is used instead of the raw path
// to keep metric cardinality bounded.
func prometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.RecordAPIRequest(r.Method, pattern, strconv.Itoa(ww.Status()), time.Since(start))
	})
}
