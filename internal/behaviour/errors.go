package behaviour

import "errors"

// Domain errors for the behaviour package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, behaviour.ErrDecode) {
//	    // handle malformed document
//	}
var (
	// ErrDecode is returned when a behaviour document is malformed or
	// missing its root element. The load that produced it leaves the
	// existing collection untouched.
	ErrDecode = errors.New("behaviour: malformed document")

	// ErrInvalidTriggering is returned when a behaviour carries an
	// unrecognised triggering kind. Fatal to that one evaluation call
	// only, never to the engine.
	ErrInvalidTriggering = errors.New("behaviour: invalid triggering kind")

	// ErrInvalidBehaviour is returned when behaviour validation fails.
	ErrInvalidBehaviour = errors.New("behaviour: invalid")

	// ErrInvalidName is returned when a behaviour name is empty or too long.
	ErrInvalidName = errors.New("behaviour: invalid name")

	// ErrTypeRegistered is returned when a trigger or action type
	// identifier is registered twice with the codec.
	ErrTypeRegistered = errors.New("behaviour: type already registered")

	// ErrDocumentNotFound is returned when no persisted behaviour
	// document exists yet.
	ErrDocumentNotFound = errors.New("behaviour: document not found")

	// ErrFiringNotFound is returned when a firing record ID does not exist.
	ErrFiringNotFound = errors.New("behaviour: firing not found")
)
