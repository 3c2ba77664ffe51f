package motion

import "errors"

var (
	ErrNilBody        = errors.New("motion: body is nil")
	ErrNilGroundProbe = errors.New("motion: ground probe is nil")
	ErrNilWallProbe   = errors.New("motion: wall probe is nil")
	ErrInvalidConfig  = errors.New("motion: invalid config")
)
