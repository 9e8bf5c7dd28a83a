package model

import (
	"errors"
	"fmt"
)

// ErrInvalidCredits is returned for credit values without a cap mapping.
var ErrInvalidCredits = errors.New("credits must be 2, 3, or 4")

var capsByCredits = map[int]int{
	2: 6,
	3: 10,
	4: 12,
}

// CapForCredits maps a course credit value to its missed-session cap.
func CapForCredits(credits int) (int, error) {
	limit, ok := capsByCredits[credits]
	if !ok {
		return 0, fmt.Errorf("%w (got %d)", ErrInvalidCredits, credits)
	}
	return limit, nil
}
