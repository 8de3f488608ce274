// Package models defines the log entry shared by the store, the codecs and
// every sync transport.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/google/uuid"
)

// Entry is one timestamped note. ID is the only identity used when two logs
// are merged; Message and Created are never compared.
type Entry struct {
	ID      uuid.UUID
	Message string
	// Created is the local calendar day, YYYY-MM-DD.
	Created string
}

// Clock returns the current local time.
type Clock func() time.Time

// SystemClock is the wall clock in the local timezone.
func SystemClock() time.Time { return time.Now() }

// Today formats now as an entry date.
func Today(now time.Time) string {
	return now.Format(common.DateLayout)
}

// NewEntry builds a fresh entry for the day of now.
func NewEntry(message string, now time.Time) Entry {
	return NewEntryOn(Today(now), message)
}

// NewEntryOn builds a fresh entry logged into an explicit day.
func NewEntryOn(date, message string) Entry {
	return Entry{
		ID:      uuid.New(),
		Message: strings.TrimSpace(message),
		Created: date,
	}
}

// Restore rebuilds an entry that already has an identity, e.g. one received
// from a peer or read back from storage.
func Restore(id uuid.UUID, created, message string) Entry {
	return Entry{
		ID:      id,
		Message: strings.TrimSpace(message),
		Created: created,
	}
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(common.DateLayout, s)
	return err == nil
}
