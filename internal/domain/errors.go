package domain

import "errors"

// ErrUnknownType is returned when an item-type tag or feature name from
// configuration is not part of the closed vocabulary.
var ErrUnknownType = errors.New("unknown type")
