// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

// Package geo maps free-text place names to approximate coordinates using a
// static gazetteer. Resolution is deliberately coarse: the dashboard needs
// a map pin near the right city, not survey-grade precision.
package geo

import (
	"sort"
	"strings"
)

// Coordinates is a lat/lng pair.
type Coordinates struct {
	Lat float64
	Lng float64
}

// DefaultCenter is the fallback centroid used when a place name cannot be
// resolved. Events must always carry coordinates, so lookups never fail.
var DefaultCenter = Coordinates{Lat: 32.0853, Lng: 34.7818}

// gazetteer holds known place names in Hebrew and English. Keys are stored
// lowercase; Hebrew has no case so those entries are used as-is.
var gazetteer = map[string]Coordinates{
	"תל אביב":      {32.0853, 34.7818},
	"tel aviv":     {32.0853, 34.7818},
	"ירושלים":      {31.7683, 35.2137},
	"jerusalem":    {31.7683, 35.2137},
	"חיפה":         {32.7940, 34.9896},
	"haifa":        {32.7940, 34.9896},
	"באר שבע":      {31.2518, 34.7913},
	"beer sheva":   {31.2518, 34.7913},
	"אשדוד":        {31.8014, 34.6435},
	"ashdod":       {31.8014, 34.6435},
	"אשקלון":       {31.6688, 34.5743},
	"ashkelon":     {31.6688, 34.5743},
	"נתניה":        {32.3215, 34.8532},
	"netanya":      {32.3215, 34.8532},
	"ראשון לציון":  {31.9730, 34.7925},
	"rishon lezion": {31.9730, 34.7925},
	"פתח תקווה":    {32.0868, 34.8870},
	"petah tikva":  {32.0868, 34.8870},
	"רחובות":       {31.8928, 34.8113},
	"rehovot":      {31.8928, 34.8113},
	"בת ים":        {32.0231, 34.7503},
	"bat yam":      {32.0231, 34.7503},
	"חולון":        {32.0158, 34.7874},
	"holon":        {32.0158, 34.7874},
	"רמת גן":       {32.0684, 34.8248},
	"ramat gan":    {32.0684, 34.8248},
	"הרצליה":       {32.1624, 34.8443},
	"herzliya":     {32.1624, 34.8443},
	"טבריה":        {32.7922, 35.5312},
	"tiberias":     {32.7922, 35.5312},
	"צפת":          {32.9646, 35.4960},
	"safed":        {32.9646, 35.4960},
	"עכו":          {32.9281, 35.0818},
	"acre":         {32.9281, 35.0818},
	"נהריה":        {33.0058, 35.0989},
	"nahariya":     {33.0058, 35.0989},
	"קריית שמונה":  {33.2074, 35.5695},
	"kiryat shmona": {33.2074, 35.5695},
	"אילת":         {29.5577, 34.9519},
	"eilat":        {29.5577, 34.9519},
	"שדרות":        {31.5250, 34.5964},
	"sderot":       {31.5250, 34.5964},
	"רעננה":        {32.1848, 34.8713},
	"raanana":      {32.1848, 34.8713},
	"מודיעין":      {31.8928, 35.0124},
	"modiin":       {31.8928, 35.0124},
	"דימונה":       {31.0689, 35.0332},
	"dimona":       {31.0689, 35.0332},
	"גליל עליון":   {33.1208, 35.5697},
	"upper galilee": {33.1208, 35.5697},
	"רמת הגולן":    {32.9925, 35.6900},
	"golan heights": {32.9925, 35.6900},
	"עוטף עזה":     {31.4400, 34.5200},
	"gaza envelope": {31.4400, 34.5200},
	"השרון":        {32.2500, 34.9000},
	"sharon":       {32.2500, 34.9000},
	"שפלה":         {31.8500, 34.9000},
}

// gazetteerKeys holds the entry names in sorted order. Map iteration order
// is randomized, so the substring pass walks this slice instead: a name
// that matches several entries always resolves to the same one.
var gazetteerKeys = func() []string {
	keys := make([]string, 0, len(gazetteer))
	for k := range gazetteer {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// Lookup resolves a place name to coordinates. Resolution order: exact
// match, then substring containment in either direction, then DefaultCenter.
//
// The substring pass intentionally matches either direction ("תל אביב - יפו"
// resolves via the "תל אביב" entry, and the entry "השרון" matches the
// payload "לב השרון"). Short names can therefore collide; accepted as-is
// since the gazetteer only places pins on a regional map.
func Lookup(name string) Coordinates {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return DefaultCenter
	}

	if c, ok := gazetteer[needle]; ok {
		return c
	}

	for _, key := range gazetteerKeys {
		if strings.Contains(needle, key) || strings.Contains(key, needle) {
			return gazetteer[key]
		}
	}

	return DefaultCenter
}

// Known reports whether a place name resolves to a gazetteer entry rather
// than the default centroid fallback.
func Known(name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return false
	}
	if _, ok := gazetteer[needle]; ok {
		return true
	}
	for _, key := range gazetteerKeys {
		if strings.Contains(needle, key) || strings.Contains(key, needle) {
			return true
		}
	}
	return false
}
