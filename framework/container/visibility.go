package container

import (
	"fmt"

	"github.com/pkg/errors"
)

// Visibility decides whether a factory, value or module can be reached from
// outside the module that declares it.
type Visibility int

const (
	// Private entries are reachable only from inside the declaring module
	// (or any module nested below it) of the same container.
	// This is the default for factories and values.
	Private Visibility = iota

	// Public entries are reachable from anywhere the declaring module is
	// reachable, including child containers.
	// This is the default for modules.
	Public
)

// ParseVisibility turns a "public" / "private" token into a Visibility.
func ParseVisibility(token string) (Visibility, error) {
	switch token {
	case "public":
		return Public, nil
	case "private":
		return Private, nil
	}
	return 0, &InvalidRegistrationError{Reason: fmt.Sprintf("unknown visibility '%s'", token)}
}

func (v Visibility) valid() bool { return v == Private || v == Public }

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Private:
		return "private"
	}
	return fmt.Sprintf("visibility(%d)", int(v))
}

// MarshalText renders the token, so snapshots serialise as "public"/"private".
func (v Visibility) MarshalText() ([]byte, error) {
	if !v.valid() {
		return nil, errors.Errorf("container: invalid visibility %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (v *Visibility) UnmarshalText(text []byte) error {
	parsed, err := ParseVisibility(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
