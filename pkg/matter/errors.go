package matter

import "errors"

var (
	// ErrRegionRequired is returned when an operation needs a region and none
	// is selected.
	ErrRegionRequired = errors.New("matter: region is required")
	// ErrNameRequired is returned when SelectName receives a blank name.
	ErrNameRequired = errors.New("matter: name is required")
	// ErrUnknownName is returned when SelectName receives a name that is not
	// among the current name options.
	ErrUnknownName = errors.New("matter: name is not in the name options")
	// ErrTermsNotOpen is returned by AcceptTerms when the terms modal is not
	// showing.
	ErrTermsNotOpen = errors.New("matter: terms are not open")
	// ErrUnknownField is returned for field identifiers outside the form.
	ErrUnknownField = errors.New("matter: unknown field")
	// ErrReadOnlyField is returned when a lookup-populated field is written
	// directly.
	ErrReadOnlyField = errors.New("matter: field is populated by lookups")
	// ErrUnknownPerson is returned when selectedPerson does not match any row
	// of the details table.
	ErrUnknownPerson = errors.New("matter: person is not in the details table")
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("matter: controller is closed")
)
