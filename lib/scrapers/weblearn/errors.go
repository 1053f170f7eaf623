package weblearn

import "fmt"

// the login endpoint answered but its body carried no sso ticket,
// which almost always means the credentials were rejected
var ErrTicketNotFound = fmt.Errorf("could not find sso ticket in login response")

// DecodeError reports a malformed JSON field. One bad field fails the
// whole record it belongs to, but never its sibling records.
type DecodeError struct {
	Field string
	Raw   string
	Err   error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("decode field %q (raw %q): %s", e.Field, e.Raw, e.Err)
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

// ParseError reports required HTML structure missing from a detail
// page. An optional attachment being absent is not a ParseError.
type ParseError struct {
	Structure string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("required html structure %q is missing", e.Structure)
}

// DomainError reports a request the portal accepted at the HTTP layer
// but whose response body lacked the expected success marker.
type DomainError struct {
	Op string
}

func (e DomainError) Error() string {
	return fmt.Sprintf("the server did not acknowledge success for %q", e.Op)
}
