package translate

import "errors"

// ErrUnknownDevice is returned when an address is not in the directory.
var ErrUnknownDevice = errors.New("translate: unknown device")
