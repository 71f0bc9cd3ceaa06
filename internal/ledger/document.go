package ledger

import (
	"errors"
	"fmt"
	"slices"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/tartampluch/birthday-reminder/internal/config"
)

// json keeps map keys sorted so the ledger file diffs cleanly.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entry is what a bucket stores for one name: the claimed thresholds of a
// daily bucket, or the single value of a monthly bucket.
//
// On disk a daily entry is an array ([0, 7]) and a monthly entry a number (-1).
type Entry struct {
	Thresholds []int
	Value      *int
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Value != nil {
		return json.Marshal(*e.Value)
	}
	if e.Thresholds == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Thresholds)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var list []int
	if err := json.Unmarshal(data, &list); err == nil {
		e.Thresholds, e.Value = list, nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%s: entry is neither a list nor a number: %s", config.ErrLedgerCorrupt, data)
	}
	e.Thresholds, e.Value = nil, &v
	return nil
}

// Bucket maps a name to its entry.
type Bucket map[string]Entry

// Document is the whole ledger keyed by bucket.
type Document map[string]Bucket

// claim applies the claim rule to the in-memory document and reports whether
// the triple was new. It mutates d only when it returns true.
func (d Document) claim(key Key, name string, threshold int) bool {
	bucket := d[key.Value]

	switch key.Kind {
	case Monthly:
		// Presence of the name alone blocks a second claim this month.
		if _, ok := bucket[name]; ok {
			return false
		}
		if bucket == nil {
			bucket = Bucket{}
			d[key.Value] = bucket
		}
		v := threshold
		bucket[name] = Entry{Value: &v}
		return true

	default:
		entry, ok := bucket[name]
		if ok && slices.Contains(entry.Thresholds, threshold) {
			return false
		}
		if bucket == nil {
			bucket = Bucket{}
			d[key.Value] = bucket
		}
		// A monthly-style value under a daily key is replaced by a threshold set.
		bucket[name] = Entry{Thresholds: append(slices.Clone(entry.Thresholds), threshold)}
		return true
	}
}

// prune removes buckets that end before the cutoff and returns how many went.
// Keys that are not dates are kept.
func (d Document) prune(before time.Time) int {
	removed := 0
	for raw := range d {
		key, err := ParseKey(raw)
		if err != nil {
			continue
		}
		if key.expired(before) {
			delete(d, raw)
			removed++
		}
	}
	return removed
}

// ErrLedgerCorrupt marks a stored document that could not be decoded.
var ErrLedgerCorrupt = errors.New(config.ErrLedgerCorrupt)

// decodeDocument parses the stored bytes. Empty input is an empty ledger.
func decodeDocument(data []byte) (Document, error) {
	doc := Document{}
	if len(data) == 0 {
		return doc, nil
	}
	if !jsoniter.ConfigFastest.Valid(data) {
		return Document{}, ErrLedgerCorrupt
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrLedgerCorrupt, err)
	}
	if doc == nil {
		// The literal null decodes to a nil map.
		doc = Document{}
	}
	return doc, nil
}

// encodeDocument renders the ledger with the same indentation as existing files.
func encodeDocument(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
