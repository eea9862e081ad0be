package protocol

import (
	"fmt"
	"io"
	"testing"

	"deminer.ai/internal/sim/world"
)

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrInvalidState,
		ErrConfigInfeasible,
		ErrAgentStuck,
		ErrBadRequest,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("marker: %w", world.ErrInvalidState), ErrInvalidState},
		{fmt.Errorf("place mine 3: %w", world.ErrConfigurationInfeasible), ErrConfigInfeasible},
		{fmt.Errorf("tick 9: %w", world.ErrStuckAgent), ErrAgentStuck},
		{io.EOF, ErrInternal},
	}
	for _, tc := range cases {
		if got := CodeFor(tc.err); got != tc.want {
			t.Fatalf("CodeFor(%v) = %q, want %q", tc.err, got, tc.want)
		}
		if !IsKnownCode(CodeFor(tc.err)) {
			t.Fatalf("CodeFor(%v) returned an unknown code", tc.err)
		}
	}

	_, err := world.New(world.WorldConfig{Mines: -1})
	if r := NewErrorResponse(err); r.Code != ErrConfigInfeasible || r.Message == "" {
		t.Fatalf("error response = %+v", r)
	}
}
