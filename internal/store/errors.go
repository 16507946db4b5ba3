package store

import "errors"

var errEntryExists = errors.New("verifier entry already exists")
