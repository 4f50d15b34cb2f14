// Package synclog keeps a durable CSV trail of synchronization
// outcomes. It is diagnostic only; nothing gates on it.
package synclog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Outcome labels one synchronization attempt.
type Outcome string

const (
	OutcomeSaved          Outcome = "saved"
	OutcomeSaveFailed     Outcome = "save-failed"
	OutcomeOfflineSkipped Outcome = "offline-skipped"
)

// Entry is one row in the sync log.
type Entry struct {
	Timestamp  time.Time
	Outcome    Outcome
	Detail     string
	Entries    int // ledger entries in the attempted snapshot
	QueueDepth int // pending actions after the attempt
}

// Header is the CSV header for sync-log.csv.
const Header = "timestamp,outcome,detail,entries,queue_depth"

const (
	numFields     = 5
	logDir        = "logs"
	logFile       = "logs/sync-log.csv"
	colTimestamp  = 0
	colOutcome    = 1
	colDetail     = 2
	colEntries    = 3
	colQueueDepth = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colOutcome] = string(e.Outcome)
	row[colDetail] = e.Detail
	row[colEntries] = strconv.Itoa(e.Entries)
	row[colQueueDepth] = strconv.Itoa(e.QueueDepth)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	entries, err := strconv.Atoi(record[colEntries])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing entries %q: %w", record[colEntries], err)
	}

	depth, err := strconv.Atoi(record[colQueueDepth])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing queue_depth %q: %w", record[colQueueDepth], err)
	}

	return Entry{
		Timestamp:  ts,
		Outcome:    Outcome(record[colOutcome]),
		Detail:     record[colDetail],
		Entries:    entries,
		QueueDepth: depth,
	}, nil
}

// Append writes entries to <dataDir>/logs/sync-log.csv, creating the
// file and header if needed.
func Append(dataDir string, entries []Entry) error {
	dir := filepath.Join(dataDir, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(dataDir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening sync log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dataDir>/logs/sync-log.csv.
// Returns nil if the file does not exist.
func Read(dataDir string) ([]Entry, error) {
	path := filepath.Join(dataDir, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening sync log: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = numFields

	var entries []Entry
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading sync log: %w", err)
		}
		if first {
			first = false
			continue // header
		}
		e, err := UnmarshalEntry(record)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
