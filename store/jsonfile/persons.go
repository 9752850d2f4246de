/*
persons.go - Person repository

Persons persist across years; the id string (a national-ID-like
identifier) is the identity. Upsert overwrites the profile fields, the
newest commitment always wins. Deleting a person keeps commitment
history.
*/
package jsonfile

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pledgewall/pledge-engine/pledge"
)

var allDigits = regexp.MustCompile(`^\d+$`)

// ListPersons returns up to limit persons in localized name order.
func (s *Store) ListPersons(limit int) []pledge.Person {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]pledge.Person, len(s.doc.Persons))
	copy(out, s.doc.Persons)
	sort.SliceStable(out, func(i, j int) bool {
		return s.collator.Less(out[i].FullName, out[j].FullName)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FindPerson looks up a person by id.
func (s *Store) FindPerson(id string) (pledge.Person, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.doc.Persons {
		if p.ID == id {
			return p, true
		}
	}
	return pledge.Person{}, false
}

// UpsertPerson creates the person if absent, otherwise overwrites the
// profile fields (full name, group, premium flag).
func (s *Store) UpsertPerson(id, fullName string, groupID *string, isPremium bool) (pledge.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	person := s.upsertPersonLocked(id, fullName, groupID, isPremium)
	if err := s.save(); err != nil {
		return pledge.Person{}, err
	}
	return person, nil
}

func (s *Store) upsertPersonLocked(id, fullName string, groupID *string, isPremium bool) pledge.Person {
	for i := range s.doc.Persons {
		if s.doc.Persons[i].ID == id {
			s.doc.Persons[i].FullName = fullName
			s.doc.Persons[i].GroupID = groupID
			s.doc.Persons[i].IsPremium = isPremium
			return s.doc.Persons[i]
		}
	}
	person := pledge.Person{ID: id, FullName: fullName, GroupID: groupID, IsPremium: isPremium}
	s.doc.Persons = append(s.doc.Persons, person)
	return person
}

// DeletePerson removes a person by id, keeping historical commitments.
// Deleting an unknown id is a no-op.
func (s *Store) DeletePerson(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.doc.Persons[:0]
	removed := false
	for _, p := range s.doc.Persons {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return nil
	}
	s.doc.Persons = kept
	return s.save()
}

// SearchPersons matches donors for the entry form. An empty query
// returns nothing (listing is a separate operation). An all-digit query
// matches by id prefix, anything else by case-insensitive substring of
// the full name. Results are in localized name order, capped at limit.
func (s *Store) SearchPersons(query string, limit int) []pledge.Person {
	q := strings.TrimSpace(query)
	if q == "" {
		return []pledge.Person{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]pledge.Person, 0)
	if allDigits.MatchString(q) {
		for _, p := range s.doc.Persons {
			if strings.HasPrefix(p.ID, q) {
				out = append(out, p)
			}
		}
	} else {
		lower := strings.ToLower(q)
		for _, p := range s.doc.Persons {
			if strings.Contains(strings.ToLower(p.FullName), lower) {
				out = append(out, p)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.collator.Less(out[i].FullName, out[j].FullName)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
