package guard

import "errors"

// ErrUnknownGuard is returned when a guard is neither configured nor selected.
var ErrUnknownGuard = errors.New("unknown auth guard")
