// Package codec is the wire format shared by every transport: an entry is one
// JSON object on one line, and the line protocol is a handful of verbs.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/google/uuid"
)

type outEntry struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	TimeCreated string `json:"time_created"`
}

type inEntry struct {
	ID          *string `json:"id"`
	Message     *string `json:"message"`
	TimeCreated *string `json:"time_created"`
}

func toOut(e models.Entry) outEntry {
	return outEntry{ID: e.ID.String(), Message: e.Message, TimeCreated: e.Created}
}

func marshal(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// strings only, cannot fail
	_ = enc.Encode(v)
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
}

// EncodeEntry renders e as a single-line JSON object with id, message and
// time_created. JSON escaping keeps newlines in the message off the wire.
func EncodeEntry(e models.Entry) string {
	return string(marshal(toOut(e)))
}

// EncodeEntries renders a JSON array of entries; nil encodes as [].
func EncodeEntries(es []models.Entry) []byte {
	out := make([]outEntry, 0, len(es))
	for _, e := range es {
		out = append(out, toOut(e))
	}
	return marshal(out)
}

// DecodeEntry parses one encoded entry. The id is required.
func DecodeEntry(s string) (models.Entry, error) {
	return decode([]byte(s), false)
}

// DecodePushed parses an entry received on the push side of HTTP sync, where
// entries not yet persisted anywhere may omit the id; those get a fresh one.
func DecodePushed(raw []byte) (models.Entry, error) {
	return decode(raw, true)
}

func decode(raw []byte, idOptional bool) (models.Entry, error) {
	var in inEntry
	if err := json.Unmarshal(raw, &in); err != nil {
		return models.Entry{}, malformed("invalid json: %v", err)
	}

	if in.Message == nil {
		return models.Entry{}, malformed("missing message")
	}
	if in.TimeCreated == nil {
		return models.Entry{}, malformed("missing time_created")
	}
	if !models.ValidDate(*in.TimeCreated) {
		return models.Entry{}, malformed("time_created %q is not YYYY-MM-DD", *in.TimeCreated)
	}

	var id uuid.UUID
	switch {
	case in.ID == nil && idOptional:
		id = uuid.New()
	case in.ID == nil:
		return models.Entry{}, malformed("missing id")
	default:
		parsed, err := uuid.Parse(*in.ID)
		if err != nil {
			return models.Entry{}, malformed("id %q: %v", *in.ID, err)
		}
		id = parsed
	}

	return models.Restore(id, *in.TimeCreated, *in.Message), nil
}

// SplitArray splits a JSON array into its raw elements so each one can be
// decoded, and rejected, on its own.
func SplitArray(raw []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, malformed("expected json array: %v", err)
	}
	return items, nil
}

// DecodeList parses the comma-joined entries of a DUMP FROM response.
func DecodeList(line string) ([]models.Entry, error) {
	if len(bytes.TrimSpace([]byte(line))) == 0 {
		return nil, nil
	}
	items, err := SplitArray([]byte("[" + line + "]"))
	if err != nil {
		return nil, err
	}
	result := make([]models.Entry, 0, len(items))
	for _, item := range items {
		e, err := DecodeEntry(string(item))
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrMalformedEntry, fmt.Sprintf(format, args...))
}
