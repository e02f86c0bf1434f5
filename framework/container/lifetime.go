package container

import (
	"fmt"

	"github.com/pkg/errors"
)

// Lifetime governs whether a factory's result is rebuilt or reused.
type Lifetime int

const (
	// Transient builds a new instance on every resolution. Default.
	Transient Lifetime = iota

	// Singleton builds once per owning container and reuses the instance
	// for every later resolution, from that container or any descendant.
	Singleton
)

// ParseLifetime turns a "transient" / "singleton" token into a Lifetime.
//
//	lt, err := container.ParseLifetime("singleton")
func ParseLifetime(token string) (Lifetime, error) {
	switch token {
	case "transient":
		return Transient, nil
	case "singleton":
		return Singleton, nil
	}
	return 0, &InvalidRegistrationError{Reason: fmt.Sprintf("unknown lifetime '%s'", token)}
}

func (l Lifetime) valid() bool { return l == Transient || l == Singleton }

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	}
	return fmt.Sprintf("lifetime(%d)", int(l))
}

// MarshalText renders the token, so snapshots serialise as "transient"/"singleton".
func (l Lifetime) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, errors.Errorf("container: invalid lifetime %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (l *Lifetime) UnmarshalText(text []byte) error {
	parsed, err := ParseLifetime(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
