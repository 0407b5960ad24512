package enums

import "fmt"

// VoteKind is the categorical form of a vote. A vote may carry a kind, a
// numeric temperature score, or both; the voting engine derives a canonical
// temperature either way.
type VoteKind string

const (
	VoteKindIn    VoteKind = "in"
	VoteKindMaybe VoteKind = "maybe"
	VoteKindOut   VoteKind = "out"
)

var validVoteKinds = []VoteKind{
	VoteKindIn,
	VoteKindMaybe,
	VoteKindOut,
}

// String implements fmt.Stringer.
func (v VoteKind) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VoteKind.
func (v VoteKind) IsValid() bool {
	for _, candidate := range validVoteKinds {
		if candidate == v {
			return true
		}
	}
	return false
}

// Temperature maps the categorical vote onto the 0..100 enthusiasm scale.
func (v VoteKind) Temperature() int {
	switch v {
	case VoteKindIn:
		return 100
	case VoteKindMaybe:
		return 50
	default:
		return 0
	}
}

// ParseVoteKind converts raw input into a VoteKind.
func ParseVoteKind(value string) (VoteKind, error) {
	for _, candidate := range validVoteKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vote kind %q", value)
}
