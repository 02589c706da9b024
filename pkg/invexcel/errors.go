package invexcel

import "errors"

// Validation errors raised while accumulating data or while merging a sheet
// for export. All of them are terminal for the operation that triggered them;
// use errors.Is to distinguish.
var (
	// ErrDuplicateHeader is returned when a header list contains the same
	// name more than once.
	ErrDuplicateHeader = errors.New("duplicate header found")

	// ErrColumnCountMismatch is returned when a row's width does not match
	// the sheet's current header count.
	ErrColumnCountMismatch = errors.New("column count mismatch")

	// ErrUnknownHeader is returned when a sort key references a header the
	// sheet does not have, or when sorting is requested on a sheet that was
	// never given headers.
	ErrUnknownHeader = errors.New("unknown header")

	// ErrNoHeaders is returned at export time when a sheet holds data rows
	// but no header row.
	ErrNoHeaders = errors.New("no headers found")

	// ErrInvalidFreezeHeader is returned at export time when the configured
	// freeze column does not appear in the rendered header row.
	ErrInvalidFreezeHeader = errors.New("invalid freeze header")

	// ErrNoSheetData is returned by the writer-based exports when every
	// sheet was empty and there is nothing to stream.
	ErrNoSheetData = errors.New("no sheets containing data")
)
