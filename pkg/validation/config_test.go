package validation

import (
	"errors"
	"testing"
)

func TestConfigValidator_NoErrors(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Positive("Workers", 4).
		PositiveFloat("Threshold", 0.5).
		RangeFloat("ClampMin", 0.1, 0.0, 1.0)

	if cv.HasErrors() {
		t.Errorf("Expected no errors, got %v", cv.Errors())
	}
	if err := cv.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestConfigValidator_CollectsAllErrors(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Positive("Workers", 0).
		PositiveFloat("Threshold", -1.0).
		Required("Community", "")

	if len(cv.Errors()) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", len(cv.Errors()), cv.Errors())
	}
	if cv.Validate() == nil {
		t.Error("Validate() should fail")
	}
}

func TestConfigValidator_Descending(t *testing.T) {
	cv := NewConfigValidator("RateLevels")
	cv.Descending("MinScores", []float64{90, 75, 60, 40, 0})
	if cv.HasErrors() {
		t.Errorf("Strictly decreasing boundaries should pass, got %v", cv.Errors())
	}

	cv = NewConfigValidator("RateLevels")
	cv.Descending("MinScores", []float64{90, 75, 75, 40, 0})
	if !cv.HasErrors() {
		t.Error("Non-decreasing boundaries should fail")
	}
}

func TestConfigValidator_LessThan(t *testing.T) {
	cv := NewConfigValidator("Weights")
	cv.LessThan("ClampMin", 0.1, 0.4)
	if cv.HasErrors() {
		t.Errorf("0.1 < 0.4 should pass, got %v", cv.Errors())
	}

	cv = NewConfigValidator("Weights")
	cv.LessThan("ClampMin", 0.4, 0.4)
	if !cv.HasErrors() {
		t.Error("Equal bounds should fail")
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("anchors inverted")
	cv := NewConfigValidator("Normalization")
	cv.Custom("Anchors", func() error { return sentinel })

	err := cv.Validate()
	if !errors.Is(err, sentinel) {
		t.Errorf("Custom error should be wrapped, got %v", err)
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "fallback"); got != "fallback" {
		t.Errorf("DefaultOr empty = %q, want fallback", got)
	}
	if got := DefaultOr("set", "fallback"); got != "set" {
		t.Errorf("DefaultOr set = %q, want set", got)
	}
	if got := DefaultOrFloat(0, 0.5); got != 0.5 {
		t.Errorf("DefaultOrFloat(0) = %f, want 0.5", got)
	}
}

func TestClampFloat(t *testing.T) {
	cases := []struct {
		value, min, max, want float64
	}{
		{0.05, 0.1, 0.4, 0.1},
		{0.25, 0.1, 0.4, 0.25},
		{0.9, 0.1, 0.4, 0.4},
	}
	for _, tc := range cases {
		if got := ClampFloat(tc.value, tc.min, tc.max); got != tc.want {
			t.Errorf("ClampFloat(%f) = %f, want %f", tc.value, got, tc.want)
		}
	}
}

func TestValidateCIDR(t *testing.T) {
	if err := ValidateCIDR("192.168.1.0/24"); err != nil {
		t.Errorf("Valid CIDR rejected: %v", err)
	}
	if err := ValidateCIDR("not-a-subnet"); err == nil {
		t.Error("Invalid CIDR accepted")
	}
	if err := ValidateCIDR(""); err == nil {
		t.Error("Empty CIDR accepted")
	}
}

func TestValidateAddress(t *testing.T) {
	if err := ValidateAddress("10.0.0.1"); err != nil {
		t.Errorf("Valid address rejected: %v", err)
	}
	if err := ValidateAddress("10.0.0"); err == nil {
		t.Error("Invalid address accepted")
	}
}

func TestStruct(t *testing.T) {
	type probe struct {
		Community string `validate:"required"`
		Port      int    `validate:"min=1,max=65535"`
	}

	if err := Struct(&probe{Community: "public", Port: 161}); err != nil {
		t.Errorf("Valid struct rejected: %v", err)
	}
	if err := Struct(&probe{Port: 0}); err == nil {
		t.Error("Invalid struct accepted")
	}
}
