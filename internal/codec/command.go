package codec

import (
	"strings"

	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/models"
)

// Verb is a line-protocol command.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbPing
	VerbLog
	VerbDump
	VerbDumpFrom
	VerbImport
)

func (v Verb) String() string {
	switch v {
	case VerbPing:
		return "PING"
	case VerbLog:
		return "LOG"
	case VerbDump:
		return "DUMP"
	case VerbDumpFrom:
		return "DUMP FROM"
	case VerbImport:
		return "IMPORT"
	default:
		return "UNKNOWN"
	}
}

// Command is one parsed request line. Raw is the line without its terminator.
type Command struct {
	Verb Verb
	Arg  string
	Raw  string
}

// Fixed responses.
const (
	Pong    = "PONG\n"
	OK      = "OK\n"
	DumpEnd = "\n"
)

const (
	errorPrefix  = "Error: "
	importPrefix = "IMPORT "
	logPrefix    = "LOG "
	loggedPrefix = "LOGGED "
	dumpFrom     = "DUMP FROM "
)

// ParseCommand classifies a line read from the connection. Matching is
// case-sensitive; anything unrecognised is VerbUnknown.
func ParseCommand(line string) Command {
	raw := strings.TrimRight(line, "\r\n")
	cmd := Command{Raw: raw}

	switch {
	case raw == "PING":
		cmd.Verb = VerbPing
	case raw == "LOG":
		cmd.Verb = VerbLog
	case strings.HasPrefix(raw, logPrefix):
		cmd.Verb = VerbLog
		cmd.Arg = raw[len(logPrefix):]
	case raw == "DUMP":
		cmd.Verb = VerbDump
	case strings.HasPrefix(raw, dumpFrom):
		cmd.Verb = VerbDumpFrom
		cmd.Arg = strings.TrimSpace(raw[len(dumpFrom):])
	case strings.HasPrefix(raw, importPrefix):
		cmd.Verb = VerbImport
		cmd.Arg = raw[len(importPrefix):]
	default:
		cmd.Verb = VerbUnknown
	}
	return cmd
}

func Logged(message string) string {
	return loggedPrefix + message + "\n"
}

func ImportLine(e models.Entry) string {
	return importPrefix + EncodeEntry(e) + "\n"
}

func DumpFromLine(es []models.Entry) string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, EncodeEntry(e))
	}
	return strings.Join(parts, ",") + "\n"
}

func UnknownCommand(raw string) string {
	return errorPrefix + "Unknown command " + raw + "\n"
}

func MalformedEntry(err error) string {
	detail := strings.TrimPrefix(err.Error(), common.ErrMalformedEntry.Error()+": ")
	return errorPrefix + "Malformed entry " + oneLine(detail) + "\n"
}

func ErrorLine(err error) string {
	return errorPrefix + oneLine(err.Error()) + "\n"
}

// Requests, as written by the line-protocol client.

func PingRequest() string { return "PING\n" }

func DumpRequest() string { return "DUMP\n" }

func LogRequest(message string) string {
	return logPrefix + oneLine(message) + "\n"
}

func DumpFromRequest(date string) string {
	return dumpFrom + date + "\n"
}

func ImportRequest(e models.Entry) string {
	return ImportLine(e)
}

// ParseImportLine extracts the entry of an `IMPORT <json>` dump line.
func ParseImportLine(line string) (models.Entry, bool, error) {
	raw := strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(raw, importPrefix) {
		return models.Entry{}, false, nil
	}
	e, err := DecodeEntry(raw[len(importPrefix):])
	return e, true, err
}

// ParseError returns the text of an `Error: ...` response line.
func ParseError(line string) (string, bool) {
	raw := strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(raw, errorPrefix) {
		return "", false
	}
	return raw[len(errorPrefix):], true
}

// ParseLogged returns the echoed message of a `LOGGED ...` response line.
func ParseLogged(line string) (string, bool) {
	raw := strings.TrimRight(line, "\r\n")
	if raw == strings.TrimSpace(loggedPrefix) {
		return "", true
	}
	if !strings.HasPrefix(raw, loggedPrefix) {
		return "", false
	}
	return raw[len(loggedPrefix):], true
}

func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
