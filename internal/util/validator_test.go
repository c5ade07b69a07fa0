package util

import (
	"math"
	"strings"
	"testing"
)

func TestValidateUsername_Valid(t *testing.T) {
	testCases := []string{"alice", "bob_01", "li.ming", "小明同学", "a-b"}

	for _, name := range testCases {
		if err := ValidateUsername(name); err != nil {
			t.Errorf("ValidateUsername(%q) error = %v, want nil", name, err)
		}
	}
}

func TestValidateUsername_Invalid(t *testing.T) {
	testCases := []string{"", "ab", "has space", "semi;colon", strings.Repeat("x", 33)}

	for _, name := range testCases {
		if err := ValidateUsername(name); err == nil {
			t.Errorf("ValidateUsername(%q) error = nil, want error", name)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("secret1"); err != nil {
		t.Errorf("ValidatePassword(secret1) error = %v, want nil", err)
	}
	if err := ValidatePassword("12345"); err == nil {
		t.Error("ValidatePassword(12345) error = nil, want error")
	}
	if err := ValidatePassword(strings.Repeat("p", 65)); err == nil {
		t.Error("ValidatePassword(65 chars) error = nil, want error")
	}
}

func TestValidateMonth(t *testing.T) {
	for _, m := range []string{"2024-01", "2025-12"} {
		if err := ValidateMonth(m); err != nil {
			t.Errorf("ValidateMonth(%q) error = %v, want nil", m, err)
		}
	}

	for _, m := range []string{"", "2024/01", "2024-1", "2024-13", "not-a-month", "2024-01-01"} {
		if err := ValidateMonth(m); err == nil {
			t.Errorf("ValidateMonth(%q) error = nil, want error", m)
		}
	}
}

func TestValidateScore(t *testing.T) {
	for _, s := range []float64{0, 12.5, -23.4} {
		if err := ValidateScore(s); err != nil {
			t.Errorf("ValidateScore(%v) error = %v, want nil", s, err)
		}
	}
	for _, s := range []float64{math.NaN(), math.Inf(1), 1e8} {
		if err := ValidateScore(s); err == nil {
			t.Errorf("ValidateScore(%v) error = nil, want error", s)
		}
	}
}
