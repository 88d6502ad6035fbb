package vector

import (
	"errors"
	"strings"
	"testing"
)

func Test_Gate_ActiveOnlyForLiteralTrue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		flag   string
		active bool
	}{
		{"true", true},
		{"", false},
		{"false", false},
		{"TRUE", false},
		{"True", false},
		{"1", false},
		{"yes", false},
		{" true", false},
		{"true ", false},
	}

	for _, tc := range cases {
		g := NewGate(tc.flag)
		if g.IsActive() != tc.active {
			t.Errorf("NewGate(%q).IsActive() = %v, want %v", tc.flag, g.IsActive(), tc.active)
		}
	}
}

func Test_Gate_RequireActive_OpenGate(t *testing.T) {
	t.Parallel()

	g := NewGate("true")
	if err := g.RequireActive(); err != nil {
		t.Fatalf("RequireActive on open gate: %v", err)
	}
}

func Test_Gate_RequireActive_ClosedGate(t *testing.T) {
	t.Parallel()

	g := NewGate("false")
	err := g.RequireActive()
	if err == nil {
		t.Fatal("RequireActive on closed gate returned nil")
	}

	var inactive *InactiveFeatureError
	if !errors.As(err, &inactive) {
		t.Fatalf("want *InactiveFeatureError, got %T", err)
	}
	if !strings.Contains(err.Error(), "Vectors are inactive") {
		t.Errorf("gate error missing fixed message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "VECTORS_ACTIVE=true") {
		t.Errorf("gate error missing activation hint, got %q", err.Error())
	}
}

func Test_Gate_RequireActive_MessageIsStable(t *testing.T) {
	t.Parallel()

	a := NewGate("").RequireActive()
	b := NewGate("nonsense").RequireActive()
	if a.Error() != b.Error() {
		t.Errorf("gate message differs by flag value:\n%q\n%q", a.Error(), b.Error())
	}
}
