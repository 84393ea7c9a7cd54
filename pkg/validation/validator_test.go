package validation

import (
	"errors"
	"strings"
	"testing"
)

type innerSettings struct {
	Damping float64 `yaml:"damping" validate:"gt=0,lt=1"`
	Ratio   float64 `yaml:"ratio" validate:"gte=0,lte=1"`
}

type outerSettings struct {
	Name   string        `yaml:"name" validate:"required"`
	Kind   string        `yaml:"kind" validate:"oneof=fixture postgres neo4j"`
	Limit  int           `yaml:"limit" validate:"gte=0"`
	Inner  innerSettings `yaml:"inner"`
	NoTag  int           `validate:"lte=10"`
	Hidden int           `yaml:"-" validate:"gte=0"`
}

func validSettings() outerSettings {
	return outerSettings{
		Name:  "kgview",
		Kind:  "fixture",
		Inner: innerSettings{Damping: 0.85, Ratio: 0.5},
	}
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*outerSettings)
		wantErr string
	}{
		{"valid", func(*outerSettings) {}, ""},
		{"required", func(s *outerSettings) { s.Name = "" }, "name: field is required"},
		{"oneof", func(s *outerSettings) { s.Kind = "mysql" }, `kind: "mysql" must be one of [fixture postgres neo4j]`},
		{"gte", func(s *outerSettings) { s.Limit = -1 }, "limit: must be at least 0"},
		{"nested gt", func(s *outerSettings) { s.Inner.Damping = 0 }, "inner.damping: must be greater than 0"},
		{"nested lt", func(s *outerSettings) { s.Inner.Damping = 1 }, "inner.damping: must be less than 1"},
		{"nested lte", func(s *outerSettings) { s.Inner.Ratio = 2 }, "inner.ratio: must not exceed 1"},
		{"go name without yaml tag", func(s *outerSettings) { s.NoTag = 11 }, "NoTag: must not exceed 10"},
		{"go name for skipped yaml tag", func(s *outerSettings) { s.Hidden = -1 }, "Hidden: must be at least 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)

			err := Struct(&s)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Struct() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Struct() error = nil, want %q", tt.wantErr)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Struct() error should wrap ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Struct() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestStructNil(t *testing.T) {
	if err := Struct(nil); err == nil {
		t.Error("Struct(nil) should return an error")
	}
}
