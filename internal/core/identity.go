package core

import (
	"fmt"
	"strings"
)

// Identity is the canonical, lower-case form of a display name.
type Identity string

// Canonical normalizes a display name into its canonical key.
func Canonical(name string) Identity {
	return Identity(strings.ToLower(strings.TrimSpace(name)))
}

func (id Identity) String() string {
	return string(id)
}

// Status is the presence status of a live session.
type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusBusy    Status = "busy"
	StatusOffline Status = "offline"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusOnline, StatusAway, StatusBusy, StatusOffline:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
}
