/*
groups.go - Group repository (current-year scoped)

Group ids are user-chosen strings, unique only within (id, year). The
same id can exist again in a later year. Deleting a group keeps its
historical commitments; the recent-commitments view degrades the name
to an empty string instead.
*/
package jsonfile

import (
	"sort"

	"github.com/pledgewall/pledge-engine/pledge"
)

// ListGroups returns the current year's groups in localized name order.
func (s *Store) ListGroups() []pledge.Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	out := make([]pledge.Group, 0)
	for _, g := range s.doc.Groups {
		if g.YearID == year.ID {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.collator.Less(out[i].Name, out[j].Name)
	})
	return out
}

// CreateGroup adds a group to the current year. The id must not already
// be taken within the year.
func (s *Store) CreateGroup(id, name string, logoPath *string) (pledge.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	for _, g := range s.doc.Groups {
		if g.ID == id && g.YearID == year.ID {
			return pledge.Group{}, pledge.ErrDuplicateGroup
		}
	}

	group := pledge.Group{ID: id, Name: name, LogoPath: logoPath, YearID: year.ID}
	s.doc.Groups = append(s.doc.Groups, group)
	if err := s.save(); err != nil {
		return pledge.Group{}, err
	}
	return group, nil
}

// UpdateGroup overwrites a group's name and logo path.
func (s *Store) UpdateGroup(id, name string, logoPath *string) (pledge.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Groups {
		if s.doc.Groups[i].ID == id {
			s.doc.Groups[i].Name = name
			s.doc.Groups[i].LogoPath = logoPath
			if err := s.save(); err != nil {
				return pledge.Group{}, err
			}
			return s.doc.Groups[i], nil
		}
	}
	return pledge.Group{}, &pledge.NotFoundError{Kind: "group", ID: id}
}

// DeleteGroup removes a group by id. Commitments referencing it are
// kept. Deleting an unknown id is a no-op.
func (s *Store) DeleteGroup(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.doc.Groups[:0]
	removed := false
	for _, g := range s.doc.Groups {
		if g.ID == id {
			removed = true
			continue
		}
		kept = append(kept, g)
	}
	if !removed {
		return nil
	}
	s.doc.Groups = kept
	return s.save()
}
