/*
announcements.go - Announcement repository (current-year scoped)

Announcements are transient messaging for the display surface. The
store keeps every row of the year; the active view filters by expiry
at read time with a strict comparison, so a message disappears exactly
at its expiry instant.
*/
package jsonfile

import (
	"time"

	"github.com/pledgewall/pledge-engine/pledge"
)

// CreateAnnouncementParams carries a new announcement. Type is assumed
// validated by the caller; required-field checks happen before the
// store is touched.
type CreateAnnouncementParams struct {
	Type      pledge.AnnouncementType
	Title     string
	Text      string
	Signature string
	ExpiresAt *time.Time
	Payload   map[string]any
}

// ListAnnouncements returns every current-year announcement, expired or
// not, newest first.
func (s *Store) ListAnnouncements() []pledge.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	return pledge.AnnouncementsForYear(s.doc.Announcements, year.ID)
}

// ActiveAnnouncements returns the current-year announcements visible
// right now, newest first.
func (s *Store) ActiveAnnouncements() []pledge.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	return pledge.ActiveAnnouncements(s.doc.Announcements, year.ID, s.now())
}

// CreateAnnouncement appends an announcement to the current year.
func (s *Store) CreateAnnouncement(params CreateAnnouncementParams) (pledge.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	id := s.doc.NextAnnouncementID
	if id < 1 {
		id = 1
	}
	s.doc.NextAnnouncementID = id + 1

	payload := params.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	ann := pledge.Announcement{
		ID:        id,
		Type:      params.Type,
		Title:     params.Title,
		Text:      params.Text,
		Signature: params.Signature,
		CreatedAt: s.now(),
		ExpiresAt: params.ExpiresAt,
		Payload:   payload,
		YearID:    year.ID,
	}
	s.doc.Announcements = append(s.doc.Announcements, ann)
	if err := s.save(); err != nil {
		return pledge.Announcement{}, err
	}
	return ann, nil
}

// DeleteAnnouncement removes an announcement by id. Deleting an unknown
// id is a no-op.
func (s *Store) DeleteAnnouncement(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.doc.Announcements[:0]
	removed := false
	for _, a := range s.doc.Announcements {
		if a.ID == id {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return nil
	}
	s.doc.Announcements = kept
	return s.save()
}
