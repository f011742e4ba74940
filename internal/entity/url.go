// Package entity defines the entities and errors used in the application.
// It includes the ShortenedURL struct, which represents one entry of a
// session's shortening history, along with the relevant error definitions.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrAllocationExhausted is returned when no unused short code could be found within the retry limit.
	ErrAllocationExhausted = errors.New("short code allocation exhausted")
	// ErrSubmissionInFlight is returned when a session submits a URL while its previous submission is still running.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrKeyNotFound is returned by history storages when nothing is stored under the requested key.
	ErrKeyNotFound = errors.New("key not found")
)

// ShortenedURL represents a shortened URL kept in a session's history.
type ShortenedURL struct {
	ID          string    // ID is the unique identifier of the record.
	OriginalURL string    // OriginalURL is the normalized absolute URL the short code stands for.
	ShortCode   string    // ShortCode is the random token, unique within the history it was created in.
	CreatedAt   time.Time // CreatedAt is the creation time, kept with millisecond precision.
	Clicks      int64     // Clicks is a visit counter. Nothing increments it yet.
}
