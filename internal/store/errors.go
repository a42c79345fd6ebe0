package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrMetadataNotFound is returned when a user has no crypto metadata
	// record yet. Callers treat it as scheme 1.
	ErrMetadataNotFound = errors.New("crypto metadata was not found")

	// ErrEntryNotFound is returned when an entry id does not exist for the
	// user.
	ErrEntryNotFound = errors.New("entry was not found")

	// ErrEntryExists is returned when an entry with the same id is created
	// twice.
	ErrEntryExists = errors.New("entry already exists")

	// ErrCredentialNotFound is returned for an unknown credential id.
	ErrCredentialNotFound = errors.New("credential was not found")

	// ErrEnvelopeNotFound is returned when no key envelope matches.
	ErrEnvelopeNotFound = errors.New("key envelope was not found")

	// ErrChallengeNotFound is returned when the user has no pending
	// challenge.
	ErrChallengeNotFound = errors.New("challenge was not found")

	// ErrLegacyKeyNotFound is returned when no scheme 1 key is stored
	// locally.
	ErrLegacyKeyNotFound = errors.New("legacy key was not found")

	// ErrCorruptRecord is returned when a stored row carries a value outside
	// its closed set, e.g. an unknown scheme version.
	ErrCorruptRecord = errors.New("stored record is corrupt")

	// ErrTransient marks a failure the database classified as retryable
	// (busy, locked, connection loss, serialization failure).
	ErrTransient = errors.New("transient storage failure")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when iterating a multi-row result fails.
	ErrScanningRows = errors.New("failed to scan rows")
)

// IsRetryable reports whether err was classified as transient by the
// database error classifier.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
