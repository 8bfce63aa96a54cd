package core

// # Error Codes Reference
//
// Every failure halts the run. The CLI prints the mapped message with its code
// so whoever is running the migration can find the offending input quickly.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Input unavailable: A source CSV could not be opened or read
//	         Action: Check the --input directory contains all five exports
//	         Matches: ErrInputUnavailable
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Malformed row: A row does not match its entity's columns
//	         Action: Fix the row at the reported file and line
//	         Matches: ErrMalformedRow
//
//	ROW002 - Missing column: A required column is missing from a CSV header
//	         Patterns: "missing required columns"
//
//	ROW003 - Invalid timestamp: A date cell could not be parsed
//	         Patterns: "invalid timestamp"
//
// # Reference Errors (REF001-REF099)
//
//	REF001 - Reference not found: A row names a user or media item that is not
//	         in the export
//	         Action: Add the missing entity to its CSV or fix the reference
//	         Matches: ErrReferenceNotFound
//
// # Output Errors (OUT001-OUT099)
//
//	OUT001 - Output write failure: The script or database could not be written
//	         Action: Check disk space, permissions or database state, then rerun
//	         against an empty destination
//	         Matches: ErrOutputWrite
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: The destination already holds migrated rows
//	DB002 - Missing table: The destination schema is not installed
//	DB003 - Access denied: Credentials were rejected
//	DB004 - Connection refused: Unable to connect to database
//	DB005 - Connection reset: Database connection was interrupted
//	DB006 - Timeout: Operation timed out
//
// # Default Error (ERR000)
//
// Fallback when nothing matches; check the logged technical error.
//
// # Matching
//
// Error kinds are checked first with errors.Is. Patterns are then matched
// case-insensitively with strings.Contains and the first match wins, so more
// specific patterns come before general ones. Database patterns are checked
// before kinds for output failures so the cause is reported, not the wrapper.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

type errorKind struct {
	kind error
	msg  UserMessage
}

var errorKinds = []errorKind{
	{
		kind: ErrInputUnavailable,
		msg: UserMessage{
			Message: "A source CSV could not be read",
			Action:  "Check the input directory contains users.csv, files.csv, media.csv, media_revisions.csv and nodes.csv",
			Code:    "SRC001",
		},
	},
	{
		kind: ErrReferenceNotFound,
		msg: UserMessage{
			Message: "A row references an entity that is not in the export",
			Action:  "Add the missing user or media item to its CSV, or correct the reference",
			Code:    "REF001",
		},
	},
	{
		kind: ErrOutputWrite,
		msg: UserMessage{
			Message: "Migration output could not be written",
			Action:  "Check disk space, permissions or database state, then rerun against an empty destination",
			Code:    "OUT001",
		},
	},
	{
		kind: ErrMalformedRow,
		msg: UserMessage{
			Message: "A row does not match the expected columns",
			Action:  "Fix the row at the reported file and line",
			Code:    "ROW001",
		},
	},
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	// Database errors, only reachable through `migrate apply`.
	{
		pattern: "duplicate",
		msg: UserMessage{
			Message: "The destination already holds migrated rows",
			Action:  "Migrations are write-once; restore an empty site database and rerun",
			Code:    "DB001",
		},
	},
	{
		pattern: "doesn't exist",
		msg: UserMessage{
			Message: "A destination table does not exist",
			Action:  "Install the Drupal site schema before applying",
			Code:    "DB002",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "A destination table does not exist",
			Action:  "Install the Drupal site schema before applying",
			Code:    "DB002",
		},
	},
	{
		pattern: "access denied",
		msg: UserMessage{
			Message: "The database rejected the credentials",
			Action:  "Check the user and password in --database-url",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Check the database is running and reachable",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Restore an empty destination and rerun",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Restore an empty destination and rerun",
			Code:    "DB006",
		},
	},

	// Row errors with a more specific cause than ROW001.
	{
		pattern: "missing required columns",
		msg: UserMessage{
			Message: "A required column is missing from a CSV header",
			Action:  "Regenerate the export or rename the header to the expected column",
			Code:    "ROW002",
		},
	},
	{
		pattern: "invalid timestamp",
		msg: UserMessage{
			Message: "A date could not be parsed",
			Action:  "Use unix seconds or ISO 8601 (YYYY-MM-DDTHH:MM:SSZ)",
			Code:    "ROW003",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log output for the technical error",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(err)
//	// msg.Code == "REF001" for a file owned by an unknown user
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrOutputWrite) {
		for _, ep := range errorPatterns[:dbPatternCount] {
			if strings.Contains(errStr, ep.pattern) {
				return ep.msg
			}
		}
	}

	if errors.Is(err, ErrMalformedRow) {
		for _, ep := range errorPatterns[dbPatternCount:] {
			if strings.Contains(errStr, ep.pattern) {
				return ep.msg
			}
		}
	}

	for _, ek := range errorKinds {
		if errors.Is(err, ek.kind) {
			return ek.msg
		}
	}

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// dbPatternCount is the number of leading database entries in errorPatterns.
const dbPatternCount = 7

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
