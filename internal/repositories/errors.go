package repositories

import "errors"

// ErrNotFound covers both rows that do not exist and rows owned by someone
// else, so callers cannot tell the two apart.
var ErrNotFound = errors.New("not found")
