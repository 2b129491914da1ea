package relay

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
)

const journalBucket = "commands"

// Entry is the journal record for one claimed command. An entry without an
// outcome was interrupted mid-execution; the reader may or may not have acted
// on it.
type Entry struct {
	CommandID uuid.UUID                 `json:"command_id"`
	Type      string                    `json:"type"`
	Device    string                    `json:"device"`
	Sequence  int64                     `json:"sequence"`
	StartedAt time.Time                 `json:"started_at"`
	Outcome   domain.RelayCommandStatus `json:"outcome,omitempty"`
	Result    json.RawMessage           `json:"result,omitempty"`
	Error     *string                   `json:"error,omitempty"`
	Ambiguous bool                      `json:"ambiguous"`
}

// Executed reports whether the command ran to an outcome.
func (e *Entry) Executed() bool {
	return e.Outcome != ""
}

// Journal is a write-ahead record of commands the relay has claimed but not
// yet reported back, kept in a local bolt file.
type Journal struct {
	db *bolt.DB
}

// OpenJournal opens (or creates) the journal at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(journalBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close releases the file lock.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Begin records that cmd is about to be executed. It must be durable before
// the first byte goes to the reader.
func (j *Journal) Begin(cmd *domain.RelayCommand, at time.Time) error {
	return j.put(&Entry{
		CommandID: cmd.ID,
		Type:      cmd.Type,
		Device:    cmd.TargetDevice,
		Sequence:  cmd.Sequence,
		StartedAt: at,
	})
}

// Record stores the execution outcome so it can be reported again if the
// report to the bridge fails.
func (j *Journal) Record(id uuid.UUID, outcome domain.RelayCommandStatus, result []byte, errMsg *string, ambiguous bool) error {
	e, err := j.Get(id)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("journal entry %s not found", id)
	}
	e.Outcome = outcome
	e.Result = result
	e.Error = errMsg
	e.Ambiguous = ambiguous
	return j.put(e)
}

// Complete drops the entry once the bridge has the outcome.
func (j *Journal) Complete(id uuid.UUID) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(journalBucket)).Delete(id[:])
	})
}

// Get returns the entry for id, or nil.
func (j *Journal) Get(id uuid.UUID) (*Entry, error) {
	var e *Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(journalBucket)).Get(id[:])
		if v == nil {
			return nil
		}
		e = &Entry{}
		return json.Unmarshal(v, e)
	})
	if err != nil {
		return nil, fmt.Errorf("read journal entry %s: %w", id, err)
	}
	return e, nil
}

// Pending lists unreported entries, oldest first.
func (j *Journal) Pending() ([]Entry, error) {
	entries := []Entry{}
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(journalBucket)).ForEach(func(_, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	sort.Slice(entries, func(a, b int) bool {
		return entries[a].StartedAt.Before(entries[b].StartedAt)
	})
	return entries, nil
}

func (j *Journal) put(e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(journalBucket)).Put(e.CommandID[:], data)
	})
}
