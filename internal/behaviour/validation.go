package behaviour

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength  = 100
	maxGroupLength = 50
)

// ValidateBehaviour checks a behaviour before it enters the engine.
// Returns an error describing the first validation failure found.
//
// Note that Load deliberately does not validate: documents round-trip
// as written, and a bad triggering kind surfaces as an evaluation-time
// error instead.
func ValidateBehaviour(b *Behaviour) error {
	if b == nil {
		return ErrInvalidBehaviour
	}

	if err := ValidateName(b.Name); err != nil {
		return err
	}

	if !b.Triggering.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTriggering, b.Triggering)
	}

	if b.CooldownPeriod < 0 {
		return fmt.Errorf("%w: negative cooldown", ErrInvalidBehaviour)
	}

	if b.MinimalTimedTriggerDelay < 0 {
		return fmt.Errorf("%w: negative timed trigger delay", ErrInvalidBehaviour)
	}

	if len(b.Group) > maxGroupLength {
		return fmt.Errorf("%w: group exceeds %d characters", ErrInvalidBehaviour, maxGroupLength)
	}

	return nil
}

// ValidateName checks if a behaviour name is valid.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// GenerateID creates a new UUID for a behaviour or firing record.
func GenerateID() string {
	return uuid.NewString()
}
