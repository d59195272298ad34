package textenc

import "errors"

var (
	// ErrUnknownCodePage marks a code page name that is absent from the
	// encoding registry or from the active profile's code page table.
	ErrUnknownCodePage = errors.New("unknown code page")

	// ErrDisabledWithoutEncoding is returned when automatic code page
	// search is disabled but no fixed encoding was supplied.
	ErrDisabledWithoutEncoding = errors.New("magic encoding disabled without a fixed encoding")

	// ErrDefaultSymbol is returned when the configured default symbol is
	// itself representable in none of the profile's code pages. This is a
	// configuration error; continuing would either loop or drop output.
	ErrDefaultSymbol = errors.New("default symbol not encodable in any available code page")
)
