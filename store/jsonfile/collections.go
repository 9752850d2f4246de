/*
collections.go - Collection days and the collected-amount matrix

PURPOSE:
  Collection days are named sessions within the current year. Collected
  amounts form a sparse (person, day) matrix: absence means zero, and
  writing a non-positive amount deletes the cell instead of storing a
  zero. Deleting a day cascades to its cells; rows for other days are
  untouched.
*/
package jsonfile

import (
	"sort"
	"strconv"

	"github.com/pledgewall/pledge-engine/pledge"
)

// ListCollectionDays returns the current year's days in creation order.
func (s *Store) ListCollectionDays() []pledge.CollectionDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCollectionDaysLocked()
}

func (s *Store) listCollectionDaysLocked() []pledge.CollectionDay {
	year := s.currentYearLocked()
	out := make([]pledge.CollectionDay, 0)
	for _, d := range s.doc.CollectionDays {
		if d.YearID == year.ID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateCollectionDay adds a named day to the current year.
func (s *Store) CreateCollectionDay(name string) (pledge.CollectionDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	id := s.doc.NextCollectionDayID
	if id < 1 {
		id = 1
	}
	s.doc.NextCollectionDayID = id + 1

	day := pledge.CollectionDay{ID: id, Name: name, YearID: year.ID}
	s.doc.CollectionDays = append(s.doc.CollectionDays, day)
	if err := s.save(); err != nil {
		return pledge.CollectionDay{}, err
	}
	return day, nil
}

// UpdateCollectionDay renames a day.
func (s *Store) UpdateCollectionDay(id int, name string) (pledge.CollectionDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.CollectionDays {
		if s.doc.CollectionDays[i].ID == id {
			s.doc.CollectionDays[i].Name = name
			if err := s.save(); err != nil {
				return pledge.CollectionDay{}, err
			}
			return s.doc.CollectionDays[i], nil
		}
	}
	return pledge.CollectionDay{}, &pledge.NotFoundError{Kind: "collection day", ID: strconv.Itoa(id)}
}

// DeleteCollectionDay removes a day and every collected-amount cell
// recorded against it. Deleting an unknown id is a no-op.
func (s *Store) DeleteCollectionDay(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keptDays := s.doc.CollectionDays[:0]
	removed := false
	for _, d := range s.doc.CollectionDays {
		if d.ID == id {
			removed = true
			continue
		}
		keptDays = append(keptDays, d)
	}
	if !removed {
		return nil
	}
	s.doc.CollectionDays = keptDays

	keptCells := s.doc.Collections[:0]
	for _, c := range s.doc.Collections {
		if c.DayID == id {
			continue
		}
		keptCells = append(keptCells, c)
	}
	s.doc.Collections = keptCells

	return s.save()
}

// SetCollectionAmount records the amount collected from one donor on
// one day. A non-positive amount clears the cell; clearing an absent
// cell is a no-op.
func (s *Store) SetCollectionAmount(personID string, dayID int, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.doc.Collections {
		if c.PersonID == personID && c.DayID == dayID {
			idx = i
			break
		}
	}

	if amount <= 0 {
		if idx < 0 {
			return nil
		}
		s.doc.Collections = append(s.doc.Collections[:idx], s.doc.Collections[idx+1:]...)
		return s.save()
	}

	if idx >= 0 {
		s.doc.Collections[idx].Amount = amount
	} else {
		s.doc.Collections = append(s.doc.Collections, pledge.Collection{
			PersonID: personID,
			DayID:    dayID,
			Amount:   amount,
		})
	}
	return s.save()
}

// ListCollections returns every cell belonging to a current-year day.
func (s *Store) ListCollections() []pledge.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCollectionsLocked()
}

func (s *Store) listCollectionsLocked() []pledge.Collection {
	dayIDs := make(map[int]bool)
	for _, d := range s.listCollectionDaysLocked() {
		dayIDs[d.ID] = true
	}
	out := make([]pledge.Collection, 0)
	for _, c := range s.doc.Collections {
		if dayIDs[c.DayID] {
			out = append(out, c)
		}
	}
	return out
}

// PersonProgress derives one donor's collection summary against their
// newest current-year target.
func (s *Store) PersonProgress(personID string) pledge.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	target := pledge.LatestTargets(s.doc.Commitments, year.ID)[personID]

	rows := make([]pledge.Collection, 0)
	for _, c := range s.listCollectionsLocked() {
		if c.PersonID == personID {
			rows = append(rows, c)
		}
	}
	return pledge.ComputeProgress(target, rows)
}

// ProgressAll derives the collection summary for every donor that has
// either a current-year target or a collected amount.
func (s *Store) ProgressAll() map[string]pledge.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	targets := pledge.LatestTargets(s.doc.Commitments, year.ID)

	rowsByPerson := make(map[string][]pledge.Collection)
	for _, c := range s.listCollectionsLocked() {
		rowsByPerson[c.PersonID] = append(rowsByPerson[c.PersonID], c)
	}

	out := make(map[string]pledge.Progress, len(targets))
	for personID, target := range targets {
		out[personID] = pledge.ComputeProgress(target, rowsByPerson[personID])
	}
	for personID, rows := range rowsByPerson {
		if _, done := out[personID]; !done {
			out[personID] = pledge.ComputeProgress(0, rows)
		}
	}
	return out
}
