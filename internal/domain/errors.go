package domain

import (
	"errors"
	"fmt"
)

// ErrConflict marks an insert rejected because an identical record already
// exists. The pipeline treats it as "skip", not as a failure.
var ErrConflict = errors.New("record already exists")

// ErrCampaignNotFound is returned by repositories for unknown campaign ids.
var ErrCampaignNotFound = errors.New("campaign not found")

// ErrInvalidCampaign reports a violated campaign invariant.
type ErrInvalidCampaign string

func (e ErrInvalidCampaign) Error() string { return "invalid campaign: " + string(e) }

// FetchError wraps a network or parse failure while talking to an external
// endpoint (feed or page).
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// PersistError wraps a repository write rejection other than a conflict.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistError) Unwrap() error { return e.Err }
