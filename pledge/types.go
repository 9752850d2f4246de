/*
types.go - Core records of the pledge-event document

PURPOSE:
  Defines the entity records and the whole-document schema that the
  jsonfile store persists. Field tags match the on-disk JSON document
  exactly, so a file written by one process version round-trips through
  another unchanged.

DOCUMENT LAYOUT:
  One JSON object holding every collection plus the per-collection id
  counters. Counters are monotonic and never reuse a deleted id.

YEAR SCOPING:
  Groups, commitments, collection days and announcements carry the
  year_id they were created under. Persons are NOT year-scoped: a donor
  keeps the same record across years, identified by the id string itself
  (a national-ID-like identifier).

SEE ALSO:
  - views.go: Derived views computed over these records
  - store/jsonfile: Persistence and repository operations
*/
package pledge

import "time"

// =============================================================================
// ENTITY RECORDS
// =============================================================================

// Year is a fundraising season. Exactly one year is current at any time.
type Year struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	IsCurrent bool   `json:"is_current"`
}

// Group is a donor group within a year. The id is user-chosen and unique
// only within (id, year_id).
type Group struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	LogoPath *string `json:"logo_path"`
	YearID   int     `json:"year_id"`
}

// Person is a donor. Profile fields reflect the latest commitment; prior
// commitment rows are never touched when the profile changes.
type Person struct {
	ID        string  `json:"id"`
	FullName  string  `json:"full_name"`
	GroupID   *string `json:"group_id"`
	IsPremium bool    `json:"is_premium"`
}

// Commitment is an append-only pledge record. Immutable once created.
// IsPremium is a snapshot of the donor's flag at creation time.
type Commitment struct {
	ID        int       `json:"id"`
	PersonID  string    `json:"person_id"`
	GroupID   string    `json:"group_id"`
	Target    float64   `json:"target"`
	IsPremium bool      `json:"is_premium"`
	CreatedAt time.Time `json:"created_at"`
	YearID    int       `json:"year_id"`
}

// CollectionDay is a named collection session within a year. Not
// necessarily a calendar date.
type CollectionDay struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	YearID int    `json:"year_id"`
}

// Collection is one cell of the sparse (person, day) collection matrix.
// Absence of a row means zero collected; non-positive amounts are never
// stored.
type Collection struct {
	PersonID string  `json:"person_id"`
	DayID    int     `json:"day_id"`
	Amount   float64 `json:"amount"`
}

// AnnouncementType selects the display treatment on the public screen.
type AnnouncementType string

const (
	AnnouncementTicker AnnouncementType = "ticker"
	AnnouncementBanner AnnouncementType = "banner"
	AnnouncementPush   AnnouncementType = "push"
)

// Valid reports whether t is one of the known announcement types.
func (t AnnouncementType) Valid() bool {
	switch t {
	case AnnouncementTicker, AnnouncementBanner, AnnouncementPush:
		return true
	}
	return false
}

// Announcement is a transient message shown on the display surface,
// filtered live by expiry.
type Announcement struct {
	ID        int              `json:"id"`
	Type      AnnouncementType `json:"type"`
	Title     string           `json:"title"`
	Text      string           `json:"text"`
	Signature string           `json:"signature"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt *time.Time       `json:"expires_at"`
	Payload   map[string]any   `json:"payload"`
	YearID    int              `json:"year_id"`
}

// Active reports whether the announcement is visible at the given
// instant. Expiry uses a strict comparison: at the exact expiry instant
// the announcement is already excluded.
func (a Announcement) Active(now time.Time) bool {
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// =============================================================================
// DOCUMENT - the whole on-disk state
// =============================================================================

// Document is the entire persisted state: every collection plus the id
// counters. It is read once at startup, mutated in memory, and rewritten
// wholesale after every mutation.
type Document struct {
	Years          []Year          `json:"years"`
	Groups         []Group         `json:"groups"`
	Persons        []Person        `json:"persons"`
	Commitments    []Commitment    `json:"commitments"`
	CollectionDays []CollectionDay `json:"collection_days"`
	Collections    []Collection    `json:"collections"`
	Announcements  []Announcement  `json:"announcements"`

	NextCommitmentID    int `json:"nextCommitmentId"`
	NextCollectionDayID int `json:"nextCollectionDayId"`
	NextAnnouncementID  int `json:"nextAnnouncementId"`
	NextYearID          int `json:"nextYearId"`
}

// =============================================================================
// DENORMALIZED RESULT TYPES
// =============================================================================

// AddedCommitment is the denormalized result of recording a pledge. It
// carries the group name as of creation time so the caller never needs a
// separate join for the just-created record.
type AddedCommitment struct {
	ID        int       `json:"id"`
	PersonID  string    `json:"personId"`
	FullName  string    `json:"fullName"`
	GroupID   string    `json:"groupId"`
	GroupName string    `json:"groupName"`
	Target    float64   `json:"target"`
	IsPremium bool      `json:"isPremium"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommitmentView is a commitment joined with the live person and group
// names for display. Name fields degrade to the empty string when the
// referenced record has been deleted since the pledge was recorded.
type CommitmentView struct {
	ID        int       `json:"id"`
	PersonID  string    `json:"person_id"`
	GroupID   string    `json:"group_id"`
	Target    float64   `json:"target"`
	IsPremium bool      `json:"is_premium"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	GroupName string    `json:"group_name"`
}

// YearExtract bundles every record belonging to one year, plus the full
// person table (persons are shared across years). Used by the archive
// exporter.
type YearExtract struct {
	Year           Year
	Groups         []Group
	Persons        []Person
	Commitments    []Commitment
	CollectionDays []CollectionDay
	Collections    []Collection
	Announcements  []Announcement
}
