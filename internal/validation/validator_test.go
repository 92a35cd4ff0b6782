// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package validation

import (
	"strings"
	"testing"
)

type testRecommendRequest struct {
	Limit int `validate:"omitempty,min=1,max=50"`
}

type testAddSongRequest struct {
	Title string `validate:"required,max=512"`
	URI   string `validate:"omitempty,max=512"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
	}{
		{"limit in range", &testRecommendRequest{Limit: 10}},
		{"limit omitted", &testRecommendRequest{}},
		{"title present", &testAddSongRequest{Title: "Midnight City"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.in); err != nil {
				t.Errorf("expected valid, got: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{}
		wantMsg string
	}{
		{"limit too high", &testRecommendRequest{Limit: 500}, "must be at most 50"},
		{"missing title", &testAddSongRequest{}, "Title is required"},
		{"title too long", &testAddSongRequest{Title: strings.Repeat("a", 600)}, "at most 512 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.in)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected message containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&testAddSongRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected code VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if apiErr.Details["field"] != "Title" {
		t.Errorf("expected field Title in details, got %v", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	type multi struct {
		Title string `validate:"required"`
		Limit int    `validate:"min=1"`
	}

	err := ValidateStruct(&multi{Limit: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("expected fields detail for multiple errors")
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("expected the same validator instance")
	}
}
