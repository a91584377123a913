package dxs

import (
	"context"
	"sync"
)

func CreateTestEntriesReader() *TestEntriesReader {
	return &TestEntriesReader{
		Values: map[string]string{
			"67109120":  "2150.4",
			"251658754": "10350",
			"251658753": "12345.6",
			"16780032":  "3",
			"33556736":  "2290.1",
			"83886336":  "640.2",
			"67110400":  "50.01",
			"33556228":  "212",
			"33556227":  "24.5",
			"33556226":  "48.3",
			"33556229":  "87",
		},
	}
}

// TestEntriesReader answers every request from Values, in request order.
// Ids without a value are answered with "0".
type TestEntriesReader struct {
	Values map[string]string
	Err    error
	// FailOn makes requests containing this id fail with Err
	FailOn string

	mu       sync.Mutex
	requests []IdSet
}

func (r *TestEntriesReader) ReadEntries(ctx context.Context, ids IdSet) (Envelope, error) {
	r.mu.Lock()
	r.requests = append(r.requests, ids.Clone())
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Err != nil && (r.FailOn == "" || ids.Contains(r.FailOn)) {
		return nil, r.Err
	}
	env := make(Envelope, 0, len(ids))
	for _, id := range ids {
		value, ok := r.Values[id]
		if !ok {
			value = "0"
		}
		env = append(env, Entry{Id: id, Value: value})
	}
	return env, nil
}

func (r *TestEntriesReader) Requests() []IdSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]IdSet(nil), r.requests...)
}
