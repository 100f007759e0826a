// Package client talks to the passkeeper HTTP API.
//
// HTTPClient sends the session token returned by login as a bearer
// Authorization header and maps error responses to sentinels callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, common.ErrorNotFound,
// common.ErrorAlreadyExists and common.ErrorValidation.
package client
