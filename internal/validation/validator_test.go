// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package validation

import (
	"strings"
	"testing"
)

type queryStruct struct {
	Title  string `query:"title" validate:"required,notblank,nocontrol,max=20"`
	K      int    `query:"k" validate:"gte=1,lte=50"`
	Source string `json:"source" validate:"oneof=csv mongo"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     queryStruct
		wantField string
		wantMsg   string
	}{
		{
			name:  "valid",
			input: queryStruct{Title: "Avatar", K: 5, Source: "csv"},
		},
		{
			name:      "missing title",
			input:     queryStruct{K: 5, Source: "csv"},
			wantField: "title",
			wantMsg:   "title is required",
		},
		{
			name:      "blank title",
			input:     queryStruct{Title: "   ", K: 5, Source: "csv"},
			wantField: "title",
			wantMsg:   "title must not be blank",
		},
		{
			name:      "control character",
			input:     queryStruct{Title: "Ava\x00tar", K: 5, Source: "csv"},
			wantField: "title",
			wantMsg:   "title must not contain control characters",
		},
		{
			name:      "title too long",
			input:     queryStruct{Title: strings.Repeat("a", 21), K: 5, Source: "csv"},
			wantField: "title",
			wantMsg:   "title must be at most 20 characters",
		},
		{
			name:      "k too large",
			input:     queryStruct{Title: "Avatar", K: 51, Source: "csv"},
			wantField: "k",
			wantMsg:   "k must be less than or equal to 50",
		},
		{
			name:      "bad source",
			input:     queryStruct{Title: "Avatar", K: 1, Source: "sqlite"},
			wantField: "source",
			wantMsg:   "source must be one of: csv mongo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&queryStruct{Title: "x", K: 0, Source: "csv"}).ToAPIError()
	if single.Code != ErrorCode {
		t.Errorf("Code = %q, want %q", single.Code, ErrorCode)
	}
	if single.Details["field"] != "k" {
		t.Errorf("Details = %v, want field k", single.Details)
	}

	multi := ValidateStruct(&queryStruct{}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details[fields] = %v, want 3 entries", multi.Details["fields"])
	}
	if !strings.Contains(multi.Message, "title is required") {
		t.Errorf("Message = %q", multi.Message)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty Message = %q", empty.Message)
	}
}
