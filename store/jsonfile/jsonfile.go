/*
Package jsonfile persists the entire pledge-event state as one JSON
document on disk.

PURPOSE:
  Owns the single document: load-or-bootstrap at startup, in-memory
  mutation, and a wholesale pretty-printed rewrite after every mutating
  operation. Repository operations for each entity family live in the
  sibling files of this package.

LOAD SEMANTICS:
  New() reads the document once. Three outcomes, observable via
  Outcome():
    Loaded       - file existed and parsed
    Bootstrapped - no file yet; default document seeded and written
    Recovered    - file existed but was unreadable; default document
                   seeded and written, the corrupt data is discarded
  Recovering instead of failing is a deliberate availability-over-
  durability choice: a corrupt file never blocks the event from
  starting.

SAVE SEMANTICS:
  Plain overwrite of the previous file, no atomic rename and no backup
  rotation. A crash mid-write can corrupt the file; the recovery path
  above handles that on the next start. Write errors are returned to
  the caller of the mutating operation.

CONCURRENCY:
  One mutex serializes every operation, reads included. The workload is
  a single entry clerk plus a display screen; the mutex is the
  single-writer queue, not a performance feature.

SEE ALSO:
  - pledge: record types, derived views, errors
  - store/sqlite: year archive export
*/
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/pledgewall/pledge-engine/pledge"
)

// FileName is the document's name inside the data directory.
const FileName = "db.json"

// LoadOutcome tags which path New() took to produce the initial state.
type LoadOutcome int

const (
	// OutcomeLoaded means the on-disk document was read and parsed.
	OutcomeLoaded LoadOutcome = iota
	// OutcomeBootstrapped means no document existed and a default one
	// was seeded.
	OutcomeBootstrapped
	// OutcomeRecovered means the document existed but could not be
	// read or parsed, and a default one replaced it.
	OutcomeRecovered
)

func (o LoadOutcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeBootstrapped:
		return "bootstrapped"
	case OutcomeRecovered:
		return "recovered"
	}
	return "unknown"
}

// Store owns the in-memory document and its on-disk copy.
type Store struct {
	mu       sync.Mutex
	path     string
	doc      *pledge.Document
	outcome  LoadOutcome
	collator *pledge.NameCollator
	now      func() time.Time
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLocale sets the collation locale for name ordering.
func WithLocale(tag language.Tag) Option {
	return func(s *Store) { s.collator = pledge.NewNameCollator(tag) }
}

// WithClock overrides the time source. Tests use this to pin expiry
// and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New opens the document under dir, creating the directory and a
// default document if needed. The returned store is ready for use; call
// Outcome() to observe which load path was taken.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store{
		path:     filepath.Join(dir, FileName),
		collator: pledge.NewNameCollator(language.Hebrew),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Outcome reports which path New() took: loaded, bootstrapped, or
// recovered from corruption.
func (s *Store) Outcome() LoadOutcome {
	return s.outcome
}

// Path returns the document's location on disk.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		var doc pledge.Document
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr != nil {
			s.outcome = OutcomeRecovered
		} else {
			s.doc = &doc
			s.outcome = OutcomeLoaded
		}
	case os.IsNotExist(err):
		s.outcome = OutcomeBootstrapped
	default:
		// Unreadable for any other reason: same recovery as corruption.
		s.outcome = OutcomeRecovered
	}

	if s.doc == nil {
		s.doc = defaultDocument(s.now())
	}
	s.normalize()

	if s.outcome != OutcomeLoaded {
		if err := s.save(); err != nil {
			return fmt.Errorf("write initial document: %w", err)
		}
	}
	return nil
}

// save rewrites the whole document. Callers hold the mutex.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// defaultDocument builds the bootstrap state: the current calendar year
// flagged current, two sample groups, empty collections, counters at
// their starting values.
func defaultDocument(now time.Time) *pledge.Document {
	yearLabel := fmt.Sprintf("%d", now.Year())
	return &pledge.Document{
		Years: []pledge.Year{
			{ID: 1, Label: yearLabel, IsCurrent: true},
		},
		Groups: []pledge.Group{
			{ID: "default-1", Name: "Sample Group A", YearID: 1},
			{ID: "default-2", Name: "Sample Group B", YearID: 1},
		},
		Persons:             []pledge.Person{},
		Commitments:         []pledge.Commitment{},
		CollectionDays:      []pledge.CollectionDay{},
		Collections:         []pledge.Collection{},
		Announcements:       []pledge.Announcement{},
		NextCommitmentID:    1,
		NextCollectionDayID: 1,
		NextAnnouncementID:  1,
		NextYearID:          2,
	}
}

// normalize applies defensive defaulting to a freshly loaded document.
// There is no schema version field; a document written by an older
// build gets its missing pieces filled in here, never migrated by a
// script.
func (s *Store) normalize() {
	d := s.doc
	if d.Years == nil {
		d.Years = []pledge.Year{}
	}
	if d.Groups == nil {
		d.Groups = []pledge.Group{}
	}
	if d.Persons == nil {
		d.Persons = []pledge.Person{}
	}
	if d.Commitments == nil {
		d.Commitments = []pledge.Commitment{}
	}
	if d.CollectionDays == nil {
		d.CollectionDays = []pledge.CollectionDay{}
	}
	if d.Collections == nil {
		d.Collections = []pledge.Collection{}
	}
	if d.Announcements == nil {
		d.Announcements = []pledge.Announcement{}
	}

	// Exactly one current year. A document with none gets the current
	// calendar year; extra current flags beyond the first are cleared.
	if len(d.Years) == 0 {
		d.Years = append(d.Years, pledge.Year{
			ID:        nextYearID(d),
			Label:     fmt.Sprintf("%d", s.now().Year()),
			IsCurrent: true,
		})
		d.NextYearID = d.Years[0].ID + 1
	}
	seenCurrent := false
	for i := range d.Years {
		if d.Years[i].IsCurrent {
			if seenCurrent {
				d.Years[i].IsCurrent = false
			}
			seenCurrent = true
		}
	}
	if !seenCurrent {
		d.Years[0].IsCurrent = true
	}
}

func nextYearID(d *pledge.Document) int {
	if d.NextYearID < 1 {
		return 1
	}
	return d.NextYearID
}
