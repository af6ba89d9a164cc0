package popper

import "errors"

var (
	// ErrNilProvider is returned when New is called without a geometry provider.
	ErrNilProvider = errors.New("popper: geometry provider is nil")
	// ErrNilElement is returned when the reference or popper element is missing.
	ErrNilElement = errors.New("popper: reference and popper elements are required")
	// ErrDestroyed is returned by Update once Destroy has run.
	ErrDestroyed = errors.New("popper: instance destroyed")
	// ErrInvalidPlacement reports a placement string that does not parse.
	ErrInvalidPlacement = errors.New("popper: invalid placement")
	// ErrInvalidSide reports an unknown side name.
	ErrInvalidSide = errors.New("popper: invalid side")
)
