package blobcache

import (
	"fmt"
	"strings"
)

// Profile selects how a Client treats missing initialization, absent numeric
// values and unparseable persisted documents.
type Profile int

const (
	// Strict fails calls on an uninitialized client with ErrNotInitialized,
	// reports absent numbers as -1, and surfaces invalid persisted JSON as
	// ErrFormat. It is the default.
	Strict Profile = iota

	// Lenient answers reads on an uninitialized client with defaults, drops
	// writes, reports absent numbers as 0, and reads invalid persisted JSON as
	// an empty document. Non-object documents are still ErrFormat.
	Lenient
)

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

// ParseProfile parses a profile name, ignoring case.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	default:
		return 0, fmt.Errorf("%w: unknown profile %q", ErrInvalidArgument, s)
	}
}

// missingNumber is the value numeric accessors return for an absent key.
func (p Profile) missingNumber() int64 {
	if p == Lenient {
		return 0
	}
	return -1
}
