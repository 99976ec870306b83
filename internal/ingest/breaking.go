// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package ingest

import "strings"

// breakingKeywords is the fixed multilingual list used to flag breaking
// news at ingestion time. Matching is case-insensitive substring; the flag
// is computed once and never revisited.
var breakingKeywords = []string{
	// English
	"breaking",
	"urgent",
	"red alert",
	// Hebrew
	"מבזק",
	"דחוף",
	"אזעקה",
	"ירי רקטות",
	"פיצוץ",
	"חדירת כלי טיס",
	// Arabic
	"عاجل",
}

// IsBreaking reports whether a news title matches the breaking keyword list.
func IsBreaking(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range breakingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
