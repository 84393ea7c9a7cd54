package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("source")
	cv.Required("path", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}

	cv2 := NewConfigValidator("source")
	cv2.Required("path", "graph.yaml")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_Positive(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		expectErr bool
	}{
		{"positive", 5, false},
		{"zero", 0, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("frame")
			cv.Positive("max_frames", tt.value)
			if cv.HasErrors() != tt.expectErr {
				t.Errorf("Positive(%d) hasErrors = %v, want %v", tt.value, cv.HasErrors(), tt.expectErr)
			}
		})
	}
}

func TestConfigValidator_NonNegative(t *testing.T) {
	cv := NewConfigValidator("source")
	cv.NonNegative("limit", -1)
	if !cv.HasErrors() {
		t.Error("Expected error for negative value")
	}

	cv2 := NewConfigValidator("source")
	cv2.NonNegative("limit", 0)
	if cv2.HasErrors() {
		t.Error("Expected no error for zero")
	}
}

func TestConfigValidator_PositiveFloat(t *testing.T) {
	tests := []struct {
		value     float64
		expectErr bool
	}{
		{60, false},
		{0.5, false},
		{0, true},
		{-30, true},
	}

	for _, tt := range tests {
		cv := NewConfigValidator("frame")
		cv.PositiveFloat("fps", tt.value)
		if cv.HasErrors() != tt.expectErr {
			t.Errorf("PositiveFloat(%v) hasErrors = %v, want %v", tt.value, cv.HasErrors(), tt.expectErr)
		}
	}
}

func TestConfigValidator_Greater(t *testing.T) {
	cv := NewConfigValidator("interaction")
	cv.Greater("hit_radius", 8, "render.node_radius", 8)
	if !cv.HasErrors() {
		t.Fatal("Expected error for value equal to the bound")
	}
	if !strings.Contains(cv.Errors()[0].Error(), "render.node_radius") {
		t.Errorf("error %q does not name the other field", cv.Errors()[0])
	}

	cv2 := NewConfigValidator("interaction")
	cv2.Greater("hit_radius", 12, "render.node_radius", 8)
	if cv2.HasErrors() {
		t.Error("Expected no error for larger value")
	}
}

func TestConfigValidator_AtMost(t *testing.T) {
	cv := NewConfigValidator("render")
	cv.AtMost("node_radius", 12, "simulation.node_radius", 8)
	if !cv.HasErrors() {
		t.Fatal("Expected error for value above the bound")
	}
	if !strings.Contains(cv.Errors()[0].Error(), "simulation.node_radius") {
		t.Errorf("error %q does not name the other field", cv.Errors()[0])
	}

	cv2 := NewConfigValidator("render")
	cv2.AtMost("node_radius", 8, "simulation.node_radius", 8)
	if cv2.HasErrors() {
		t.Error("Expected no error for value equal to the bound")
	}
}

func TestConfigValidator_MinDuration(t *testing.T) {
	cv := NewConfigValidator("metrics")
	cv.MinDuration("interval", 100*time.Millisecond, time.Second)

	if !cv.HasErrors() {
		t.Error("Expected error for duration below minimum")
	}

	cv2 := NewConfigValidator("metrics")
	cv2.MinDuration("interval", 10*time.Second, time.Second)

	if cv2.HasErrors() {
		t.Error("Expected no error for duration at or above minimum")
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	allowed := []string{"json", "console"}

	cv := NewConfigValidator("logging")
	cv.OneOf("format", "xml", allowed)
	if !cv.HasErrors() {
		t.Error("Expected error for value not in allowed list")
	}

	cv2 := NewConfigValidator("logging")
	cv2.OneOf("format", "console", allowed)
	if cv2.HasErrors() {
		t.Error("Expected no error for allowed value")
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	cv := NewConfigValidator("source")
	cv.Custom("database_url", func() error {
		return errors.New("scheme must be postgres")
	})

	if !cv.HasErrors() {
		t.Fatal("Expected error from custom validation")
	}
	if !strings.Contains(cv.Errors()[0].Error(), "source.database_url: scheme must be postgres") {
		t.Errorf("unexpected error text: %v", cv.Errors()[0])
	}

	cv2 := NewConfigValidator("source")
	cv2.Custom("database_url", func() error { return nil })
	if cv2.HasErrors() {
		t.Error("Expected no error from passing custom validation")
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("source")
	cv.When(false, func(v *ConfigValidator) {
		v.Required("database_url", "")
	})
	if cv.HasErrors() {
		t.Error("Validations should not run when condition is false")
	}

	cv.When(true, func(v *ConfigValidator) {
		v.Required("database_url", "")
	})
	if !cv.HasErrors() {
		t.Error("Validations should run when condition is true")
	}
}

func TestConfigValidator_Validate(t *testing.T) {
	cv := NewConfigValidator("config")
	if err := cv.Validate(); err != nil {
		t.Errorf("Validate() with no errors = %v, want nil", err)
	}

	cv.Required("a", "").
		Positive("b", 0).
		PositiveFloat("c", -1)

	if len(cv.Errors()) != 3 {
		t.Fatalf("Errors() = %d, want 3", len(cv.Errors()))
	}

	err := cv.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate() error should wrap ErrInvalid, got %v", err)
	}
	for _, field := range []string{"config.a", "config.b", "config.c"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Validate() error missing %s: %v", field, err)
		}
	}
}
