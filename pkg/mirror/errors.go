package mirror

import "errors"

var (
	ErrNotResolved    = errors.New("mirror: session is not resolved yet")
	ErrNoFetcher      = errors.New("mirror: no session fetcher configured")
	ErrFetchFailed    = errors.New("mirror: failed to fetch session")
	ErrInvalidSession = errors.New("mirror: invalid session payload")
)
