// Package errs defines the error taxonomy shared by the otis codec packages.
//
// Every failure the codec reports wraps exactly one of the sentinel errors
// below, so callers can branch with errors.Is. None of them is retryable: each
// points at a configuration or input that has to be corrected first.
package errs
