package dxs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Entry is a single {id, value} record of a dxs response. Value is kept as raw
// text whatever its JSON type.
type Entry struct {
	Id    string
	Value string
}

// Envelope holds the entries of one response in document order.
type Envelope []Entry

type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed dxs response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed dxs response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Parse decodes {"entries":[{"id","value"}]} as well as the device native
// {"dxsEntries":[{"dxsId","value"}]} document.
func Parse(body string) (Envelope, error) {
	var doc struct {
		Entries    *[]Entry `json:"entries"`
		DxsEntries *[]Entry `json:"dxsEntries"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid json", Err: err}
	}
	entries := doc.Entries
	if entries == nil {
		entries = doc.DxsEntries
	}
	if entries == nil {
		return nil, &MalformedResponseError{Reason: "missing entry list"}
	}
	return Envelope(*entries), nil
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Id    json.RawMessage `json:"id"`
		DxsId json.RawMessage `json:"dxsId"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id := raw.Id
	if len(id) == 0 {
		id = raw.DxsId
	}
	var err error
	if e.Id, err = rawText(id); err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	if e.Value, err = rawText(raw.Value); err != nil {
		return fmt.Errorf("entry value: %w", err)
	}
	return nil
}

// Ids returns the entry ids in envelope order.
func (env Envelope) Ids() IdSet {
	ids := make(IdSet, len(env))
	for i := range env {
		ids[i] = env[i].Id
	}
	return ids
}

func rawText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errors.New("unexpected composite value")
	default:
		// numbers and booleans keep their literal form
		return string(raw), nil
	}
}
