package klutch

import (
	"encoding/json"
	"fmt"
)

// AuthError means the credential exchange produced no usable session
// token. Fatal to the enclosing flow; never retried.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("session authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// QueryError carries the raw errors payload of a query-API response.
// From the caller's point of view the operation was not applied at all.
type QueryError struct {
	Errors json.RawMessage
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query api returned errors: %s", e.Errors)
}
