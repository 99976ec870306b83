// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package models

import "testing"

func TestEventTypeValid(t *testing.T) {
	valid := []EventType{
		EventMissileLaunch, EventMissileIntercept, EventAirRaidAlert,
		EventDroneAttack, EventAirstrike, EventArtillery,
		EventGroundOperation, EventCyberAttack, EventExplosion, EventOther,
	}
	for _, et := range valid {
		if !et.Valid() {
			t.Errorf("expected %q to be valid", et)
		}
	}

	for _, et := range []EventType{"", "missile", "MISSILE_LAUNCH", "nuke"} {
		if et.Valid() {
			t.Errorf("expected %q to be invalid", et)
		}
	}
}

func TestThreatLevelValid(t *testing.T) {
	for _, l := range []ThreatLevel{ThreatLow, ThreatMedium, ThreatHigh, ThreatCritical} {
		if !l.Valid() {
			t.Errorf("expected %q to be valid", l)
		}
	}
	for _, l := range []ThreatLevel{"", "extreme", "CRITICAL", "severe"} {
		if l.Valid() {
			t.Errorf("expected %q to be invalid", l)
		}
	}
}
