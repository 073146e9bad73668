package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoCaptureFiles is returned when a capture pattern matches no files.
var ErrNoCaptureFiles = errors.New("no capture files matched")

// Result is the outcome of decoding one or more capture documents.
type Result struct {
	Transactions []Transaction

	// Skipped counts entries that were present but malformed.
	Skipped int

	// Warnings holds recoverable problems: malformed documents and entries.
	Warnings []error
}

// envelope tolerates both the standard {"log":{"entries":[...]}} layout and a
// bare {"entries":[...]} object.
type envelope struct {
	Log *struct {
		Entries []json.RawMessage `json:"entries"`
	} `json:"log"`
	Entries []json.RawMessage `json:"entries"`
}

// Parse decodes a single capture document. Transactions are indexed from 1.
//
// A document that is not valid JSON returns an empty Result together with a
// *ParseError; callers are expected to report it and carry on with zero
// entries.
func Parse(data []byte) (*Result, error) {
	return parse(data, "", 1)
}

func parse(data []byte, source string, firstIndex int) (*Result, error) {
	res := &Result{}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return res, &ParseError{Source: source, Message: "invalid capture document", Cause: err}
	}

	raw := env.Entries
	if env.Log != nil {
		raw = env.Log.Entries
	}

	next := firstIndex
	for i, msg := range raw {
		var entry HAREntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			res.Skipped++
			res.Warnings = append(res.Warnings, &ParseError{Source: source, Entry: i + 1, Message: "malformed entry", Cause: err})
			continue
		}
		if entry.Request.URL == "" {
			res.Skipped++
			res.Warnings = append(res.Warnings, &ParseError{Source: source, Entry: i + 1, Message: "entry has no request url"})
			continue
		}
		res.Transactions = append(res.Transactions, fromEntry(&entry, next))
		next++
	}

	return res, nil
}

// LoadFile reads and decodes a capture file.
func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture %s: %w", path, err)
	}
	return parse(data, path, 1)
}

// LoadGlob decodes every file matching pattern (doublestar syntax, e.g.
// "captures/**/*.har") in lexical order and concatenates their entries into a
// single transaction sequence. Documents that fail to decode are recorded as
// warnings and contribute zero entries.
func LoadGlob(pattern string) (*Result, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid capture pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCaptureFiles, pattern)
	}
	sort.Strings(paths)

	out := &Result{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read capture %s: %w", path, err)
		}
		res, perr := parse(data, path, len(out.Transactions)+1)
		if perr != nil {
			out.Warnings = append(out.Warnings, perr)
			continue
		}
		out.Transactions = append(out.Transactions, res.Transactions...)
		out.Skipped += res.Skipped
		out.Warnings = append(out.Warnings, res.Warnings...)
	}
	return out, nil
}
