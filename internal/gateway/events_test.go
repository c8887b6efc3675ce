// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package gateway

import "testing"

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in       string
		wantKind TargetKind
		wantID   string
	}{
		{"mine:mine-1", TargetFacility, "mine-1"},
		{"user:miner-7", TargetUser, "miner-7"},
		{"everyone", TargetBroadcast, ""},
		{"", TargetBroadcast, ""},
		{"mine:", TargetFacility, ""},
		{"minecraft", TargetBroadcast, ""},
		{"user:user:nested", TargetUser, "user:nested"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseTarget(tt.in)
			if got.Kind != tt.wantKind || got.ID != tt.wantID {
				t.Errorf("ParseTarget(%q) = %+v, want kind %v id %q", tt.in, got, tt.wantKind, tt.wantID)
			}
		})
	}
}

func TestTargetConstructors(t *testing.T) {
	if got := BroadcastTarget(); got.Kind != TargetBroadcast {
		t.Errorf("BroadcastTarget kind = %v", got.Kind)
	}
	if got := FacilityTarget("mine-1"); got.Kind != TargetFacility || got.ID != "mine-1" {
		t.Errorf("FacilityTarget = %+v", got)
	}
	if got := UserTarget("u1"); got.Kind != TargetUser || got.ID != "u1" {
		t.Errorf("UserTarget = %+v", got)
	}
}
