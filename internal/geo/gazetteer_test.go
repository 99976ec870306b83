// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package geo

import "testing"

func TestLookupExactMatch(t *testing.T) {
	tests := []struct {
		name string
		want Coordinates
	}{
		{"תל אביב", Coordinates{32.0853, 34.7818}},
		{"tel aviv", Coordinates{32.0853, 34.7818}},
		{"חיפה", Coordinates{32.7940, 34.9896}},
		{"jerusalem", Coordinates{31.7683, 35.2137}},
		{"Tel Aviv", Coordinates{32.0853, 34.7818}}, // case-folded
		{"  haifa  ", Coordinates{32.7940, 34.9896}}, // trimmed
	}

	for _, tt := range tests {
		if got := Lookup(tt.name); got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLookupSubstring(t *testing.T) {
	// Payload name contains a gazetteer key.
	if got := Lookup("תל אביב - יפו"); got != (Coordinates{32.0853, 34.7818}) {
		t.Errorf("expected Tel Aviv coordinates for compound name, got %v", got)
	}
	// Gazetteer key contains the payload name.
	if got := Lookup("גליל"); got == DefaultCenter {
		t.Error("expected partial Hebrew region name to resolve via containment")
	}
}

func TestLookupFallback(t *testing.T) {
	for _, name := range []string{"", "atlantis", "עיר לא קיימת בכלל"} {
		if got := Lookup(name); got != DefaultCenter {
			t.Errorf("Lookup(%q) = %v, want default centroid", name, got)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known("sderot") {
		t.Error("expected sderot to be known")
	}
	if Known("atlantis") {
		t.Error("expected atlantis to be unknown")
	}
	if Known("") {
		t.Error("expected empty name to be unknown")
	}
}

func TestLookupAmbiguousNameIsDeterministic(t *testing.T) {
	// Contains both "sderot" and "sharon"; the sorted substring pass must
	// resolve it to the same entry on every call.
	const name = "sharon and sderot corridor"
	want := Lookup(name)
	if want == DefaultCenter {
		t.Fatal("expected ambiguous name to resolve via containment")
	}
	if want != (Coordinates{31.5250, 34.5964}) {
		t.Errorf("Lookup(%q) = %v, want first sorted match (sderot)", name, want)
	}
	for i := 0; i < 100; i++ {
		if got := Lookup(name); got != want {
			t.Fatalf("Lookup(%q) unstable: %v then %v", name, want, got)
		}
	}
}
