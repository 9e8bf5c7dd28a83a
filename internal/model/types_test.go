package model

import (
	"errors"
	"testing"
)

func TestCapForCredits(t *testing.T) {
	cases := map[int]int{2: 6, 3: 10, 4: 12}
	for credits, want := range cases {
		got, err := CapForCredits(credits)
		if err != nil {
			t.Fatalf("credits %d: unexpected error: %v", credits, err)
		}
		if got != want {
			t.Fatalf("credits %d: expected cap %d, got %d", credits, want, got)
		}
	}
	for _, credits := range []int{0, 1, 5, -3} {
		if _, err := CapForCredits(credits); !errors.Is(err, ErrInvalidCredits) {
			t.Fatalf("credits %d: expected ErrInvalidCredits, got %v", credits, err)
		}
	}
}

func TestCourseStatus(t *testing.T) {
	c := Course{Cap: 6, Missed: 5}
	if c.AtCap() || c.Status() != "ok" || c.Remaining() != 1 {
		t.Fatalf("unexpected state below cap: %+v %q", c, c.Status())
	}
	c.Missed = 6
	if !c.AtCap() || c.Status() != "at cap" {
		t.Fatalf("expected at cap, got %q", c.Status())
	}
	c.Missed = 8
	if c.Status() != "over cap" || c.Remaining() != -2 {
		t.Fatalf("expected over cap with -2 remaining, got %q %d", c.Status(), c.Remaining())
	}
}
