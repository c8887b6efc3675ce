// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package validation

import (
	"strings"
	"testing"
)

type samplePayload struct {
	MineID   string `validate:"required"`
	Severity string `validate:"omitempty,oneof=warning critical"`
	Message  string `validate:"omitempty,min=5"`
}

func TestValidateStructPasses(t *testing.T) {
	if err := ValidateStruct(&samplePayload{MineID: "mine-1"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateStruct(&samplePayload{
		MineID:   "mine-1",
		Severity: "critical",
		Message:  "gas detected",
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateStructMessages(t *testing.T) {
	tests := []struct {
		name    string
		in      samplePayload
		wantMsg string
		wantTag string
	}{
		{
			name:    "missing required field",
			in:      samplePayload{},
			wantMsg: "MineID is required",
			wantTag: "required",
		},
		{
			name:    "oneof violation",
			in:      samplePayload{MineID: "mine-1", Severity: "extreme"},
			wantMsg: "Severity must be one of: warning critical",
			wantTag: "oneof",
		},
		{
			name:    "min violation",
			in:      samplePayload{MineID: "mine-1", Message: "hi"},
			wantMsg: "Message must be at least 5",
			wantTag: "min",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.in)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
			if errs := err.Errors(); len(errs) != 1 || errs[0].Tag() != tt.wantTag {
				t.Errorf("field errors = %+v, want single %s", errs, tt.wantTag)
			}
		})
	}
}

func TestValidateStructCombinesMessages(t *testing.T) {
	err := ValidateStruct(&samplePayload{Severity: "extreme"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("field errors = %d, want 2", len(err.Errors()))
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("combined message = %q, want semicolon-joined", err.Error())
	}
}
