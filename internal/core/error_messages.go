package core

// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. Codes are grouped by category:
//
// # Key and Column Errors (KEY, COL)
//
//	KEY001 - Empty key: the identifier is blank
//	         Patterns: "empty key"
//	COL001 - Missing column: a key or enrichment column is not in the sheet
//	         Patterns: "missing column"
//	COL002 - Column conflict: a result column would overwrite a sheet column
//	         Patterns: "column conflict"
//
// # Dataset and Selection Errors (DS, SEL, WB)
//
//	DS001  - Empty dataset: the sheet to check has no rows or no columns
//	         Patterns: "empty dataset"
//	DS002  - Dataset not found: a named sheet is not in the workbook
//	         Patterns: "dataset not found"
//	SEL001 - Ambiguous selection: the sheet is compared against itself
//	         Patterns: "ambiguous selection"
//	SEL002 - Invalid selection: the reference choice does not fit the policy
//	         Patterns: "invalid selection"
//	WB001  - Workbook not found: the upload session expired or never existed
//	         Patterns: "workbook not found"
//
// # Configuration Errors (CFG)
//
//	CFG001 - Unknown policy        Patterns: "unknown match policy"
//	CFG002 - Unknown numbering     Patterns: "unknown numbering"
//	CFG003 - Invalid request body  Patterns: "invalid request"
//
// # File Errors (FILE)
//
//	FILE001 - File too large       Patterns: "file too large", "request body too large"
//	FILE002 - Invalid workbook     Patterns: "invalid workbook"
//	FILE003 - Invalid CSV          Patterns: "invalid csv"
//	FILE004 - No file              Patterns: "no file provided"
//	FILE005 - Empty file           Patterns: "empty file"
//	FILE006 - Unsupported type     Patterns: "unsupported file type"
//
// # Source Errors (SRC)
//
//	SRC001 - Database not configured  Patterns: "database source not configured"
//	SRC002 - Table not found          Patterns: "does not exist"
//
// # Upload and Request Errors (UPL, RATE)
//
//	UPL002  - System busy        Patterns: "too many uploads"
//	UPL004  - Request cancelled  Patterns: "context canceled"
//	UPL005  - Request timeout    Patterns: "context deadline exceeded"
//	RATE001 - Rate limited       Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application logs for the
// technical error when a user reports ERR000.
//
// Patterns are matched case-insensitively with strings.Contains, and the
// first match wins, so more specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Keys and columns
	{"empty key", UserMessage{
		Message: "The identifier is empty",
		Action:  "Enter an EMIS number or identifier to search for",
		Code:    "KEY001",
	}},
	{"missing column", UserMessage{
		Message: "A configured column does not exist in the sheet",
		Action:  "Check the key column and enrichment fields against the sheet headers",
		Code:    "COL001",
	}},
	{"column conflict", UserMessage{
		Message: "A result column would overwrite a column of the sheet",
		Action:  "Leave the clashing column out of the carried columns or rename the sheet",
		Code:    "COL002",
	}},

	// Datasets and selection
	{"empty dataset", UserMessage{
		Message: "The sheet to check is empty or has no columns",
		Action:  "Choose a sheet that has a header row and data",
		Code:    "DS001",
	}},
	{"dataset not found", UserMessage{
		Message: "A selected sheet is not in the workbook",
		Action:  "Pick sheets from the uploaded workbook",
		Code:    "DS002",
	}},
	{"ambiguous selection", UserMessage{
		Message: "The sheet cannot be compared against itself",
		Action:  "Choose a different sheet to compare against",
		Code:    "SEL001",
	}},
	{"invalid selection", UserMessage{
		Message: "The selected sheets do not fit the comparison type",
		Action:  "Pair comparison needs exactly one sheet to compare against",
		Code:    "SEL002",
	}},
	{"workbook not found", UserMessage{
		Message: "The uploaded workbook is no longer available",
		Action:  "Upload the file again",
		Code:    "WB001",
	}},

	// Configuration
	{"unknown match policy", UserMessage{
		Message: "Unknown comparison type",
		Action:  "Use any, per_reference or pair",
		Code:    "CFG001",
	}},
	{"unknown numbering", UserMessage{
		Message: "Unknown numbering option",
		Action:  "Use none, sequence or index",
		Code:    "CFG002",
	}},
	{"invalid request", UserMessage{
		Message: "The request could not be read",
		Action:  "Check the request body format",
		Code:    "CFG003",
	}},

	// Files
	{"file too large", UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Remove unused sheets or split the workbook",
		Code:    "FILE001",
	}},
	{"request body too large", UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Remove unused sheets or split the workbook",
		Code:    "FILE001",
	}},
	{"invalid workbook", UserMessage{
		Message: "File is not a readable Excel workbook",
		Action:  "Save the file as .xlsx and upload it again",
		Code:    "FILE002",
	}},
	{"invalid csv", UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated with a header row",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select an .xlsx or .csv file to upload",
		Code:    "FILE004",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a file with at least one sheet",
		Code:    "FILE005",
	}},
	{"unsupported file type", UserMessage{
		Message: "Only .xlsx and .csv files are supported",
		Action:  "Save the file as .xlsx or .csv",
		Code:    "FILE006",
	}},

	// Sources
	{"database source not configured", UserMessage{
		Message: "Loading from the database is not enabled",
		Action:  "Set DATABASE_URL on the server",
		Code:    "SRC001",
	}},
	{"does not exist", UserMessage{
		Message: "A requested table does not exist",
		Action:  "Check the table names",
		Code:    "SRC002",
	}},

	// Uploads and requests
	{"too many uploads", UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller workbook or try again later",
		Code:    "UPL005",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message: the first
// matching pattern, or the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
