/*
years.go - Year records and season rollover

PURPOSE:
  The current year scopes every group, commitment, collection day, and
  announcement query. StartYear closes a season: the old year keeps all
  of its records, a fresh year becomes current, and exactly one year is
  current before and after.
*/
package jsonfile

import (
	"strconv"
	"strings"

	"github.com/pledgewall/pledge-engine/pledge"
)

// CurrentYear returns the year flagged current. Falls back to the first
// year if no flag is set; normalize() makes that unreachable in normal
// operation.
func (s *Store) CurrentYear() pledge.Year {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentYearLocked()
}

func (s *Store) currentYearLocked() pledge.Year {
	for _, y := range s.doc.Years {
		if y.IsCurrent {
			return y
		}
	}
	return s.doc.Years[0]
}

// ListYears returns every year, oldest first.
func (s *Store) ListYears() []pledge.Year {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pledge.Year, len(s.doc.Years))
	copy(out, s.doc.Years)
	return out
}

// StartYear closes the current year and opens a new current one with the
// given label. Records of the closed year stay in the document; current
// queries simply stop seeing them.
func (s *Store) StartYear(label string) (pledge.Year, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return pledge.Year{}, &pledge.ValidationError{Field: "label", Message: "year label is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.doc.NextYearID
	if id < 1 {
		id = 1
	}
	s.doc.NextYearID = id + 1

	for i := range s.doc.Years {
		s.doc.Years[i].IsCurrent = false
	}
	year := pledge.Year{ID: id, Label: label, IsCurrent: true}
	s.doc.Years = append(s.doc.Years, year)

	if err := s.save(); err != nil {
		return pledge.Year{}, err
	}
	return year, nil
}

// ExtractYear bundles every record belonging to one year for archiving.
// The full person table is included because persons are shared across
// years.
func (s *Store) ExtractYear(yearID int) (pledge.YearExtract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var year *pledge.Year
	for _, y := range s.doc.Years {
		if y.ID == yearID {
			yy := y
			year = &yy
			break
		}
	}
	if year == nil {
		return pledge.YearExtract{}, &pledge.NotFoundError{Kind: "year", ID: strconv.Itoa(yearID)}
	}

	ex := pledge.YearExtract{Year: *year}
	dayIDs := make(map[int]bool)
	for _, g := range s.doc.Groups {
		if g.YearID == yearID {
			ex.Groups = append(ex.Groups, g)
		}
	}
	ex.Persons = append(ex.Persons, s.doc.Persons...)
	for _, c := range s.doc.Commitments {
		if c.YearID == yearID {
			ex.Commitments = append(ex.Commitments, c)
		}
	}
	for _, d := range s.doc.CollectionDays {
		if d.YearID == yearID {
			ex.CollectionDays = append(ex.CollectionDays, d)
			dayIDs[d.ID] = true
		}
	}
	for _, c := range s.doc.Collections {
		if dayIDs[c.DayID] {
			ex.Collections = append(ex.Collections, c)
		}
	}
	for _, a := range s.doc.Announcements {
		if a.YearID == yearID {
			ex.Announcements = append(ex.Announcements, a)
		}
	}
	return ex, nil
}
