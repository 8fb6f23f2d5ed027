package store

import "errors"

// ErrPersistenceBackendFailed wraps any error the underlying database
// driver returns.
var ErrPersistenceBackendFailed = errors.New("store: persistence backend failed")

// ErrUnknownSchemaVersion is returned when the database's recorded
// schema_version is newer than the last step of the migration chain.
var ErrUnknownSchemaVersion = errors.New("store: unknown schema version")
