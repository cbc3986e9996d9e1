package database

import "errors"

// ErrNotReady is returned by readiness checks while no connection is
// open yet.
var ErrNotReady = errors.New("database not ready")
