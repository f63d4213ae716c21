package database

import "errors"

var errMissingContext = errors.New("entry repository: missing database context")
