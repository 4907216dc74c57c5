// Package errs defines the sentinel errors returned by the archive packages.
//
// Errors are wrapped with additional context using fmt.Errorf and the %w verb,
// so callers should compare with errors.Is:
//
//	if errors.Is(err, errs.ErrSampleOutOfBounds) {
//	    // handle out of range access
//	}
package errs

import "errors"

// File and header validation errors.
var (
	// ErrFileNotFound is returned when an archive path does not exist or cannot be opened.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidMagic is returned when the file does not start with the Ogawa magic bytes.
	ErrInvalidMagic = errors.New("invalid archive: expected Ogawa magic bytes")
	// ErrUnsupportedVersion is returned when the header carries an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported archive version")
	// ErrInvalidHeaderSize is returned when a header buffer has the wrong length.
	ErrInvalidHeaderSize = errors.New("invalid header size")
)

// Structural errors. These are never recovered silently.
var (
	ErrUnexpectedEOF    = errors.New("unexpected end of file")
	ErrInvalidStructure = errors.New("invalid file structure")
	ErrInvalidMetadata  = errors.New("invalid metadata")
	ErrInvalidDataType  = errors.New("invalid data type")
)

// Navigation and access errors.
var (
	ErrPropertyNotFound  = errors.New("property not found")
	ErrObjectNotFound    = errors.New("object not found")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrSampleOutOfBounds = errors.New("sample index out of bounds")
	ErrChildOutOfBounds  = errors.New("child index out of bounds")
)

// Write path errors.
var (
	// ErrFrozen is returned for any mutation attempted after the archive was finalized.
	ErrFrozen = errors.New("archive is frozen and cannot be modified")
	// ErrReadOnly is returned when a write is attempted through a read-only handle.
	ErrReadOnly = errors.New("archive is read-only")
	// ErrWriteFailed wraps failures of the underlying stream.
	ErrWriteFailed = errors.New("write failed")
	// ErrDuplicateName is returned when a child object or property name is reused
	// under the same parent.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrInvalidName is returned for empty names or names containing '/'.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidTimeSampling is returned for time samplings whose stored times
	// are not non-decreasing or whose period is not positive.
	ErrInvalidTimeSampling = errors.New("invalid time sampling")
)
