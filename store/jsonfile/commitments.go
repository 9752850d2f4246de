/*
commitments.go - Pledge records, the composite write of the system

PURPOSE:
  AddCommitment is the one operation that touches three tables at once:
  it validates the group, upserts the donor profile, and appends the
  immutable pledge row, all under one lock and one disk write. The
  result is denormalized with the group name as of creation time so the
  caller can render it without a join.

IMMUTABILITY:
  Commitment rows are history. There is no update and no delete; a
  donor raising their pledge simply gets a newer row, and "latest"
  means highest id.
*/
package jsonfile

import (
	"github.com/pledgewall/pledge-engine/pledge"
)

// AddCommitmentParams carries the entry form fields for one pledge.
type AddCommitmentParams struct {
	PersonID  string
	FullName  string
	GroupID   string
	Target    float64
	IsPremium bool
}

// AddCommitment validates the group against the current year, upserts
// the donor, appends the pledge row, persists, and returns the
// denormalized result.
func (s *Store) AddCommitment(params AddCommitmentParams) (pledge.AddedCommitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	now := s.now()

	var group *pledge.Group
	for i := range s.doc.Groups {
		if s.doc.Groups[i].ID == params.GroupID && s.doc.Groups[i].YearID == year.ID {
			group = &s.doc.Groups[i]
			break
		}
	}
	if group == nil {
		return pledge.AddedCommitment{}, pledge.ErrGroupNotFound
	}

	groupID := params.GroupID
	s.upsertPersonLocked(params.PersonID, params.FullName, &groupID, params.IsPremium)

	id := s.doc.NextCommitmentID
	if id < 1 {
		id = 1
	}
	s.doc.NextCommitmentID = id + 1

	s.doc.Commitments = append(s.doc.Commitments, pledge.Commitment{
		ID:        id,
		PersonID:  params.PersonID,
		GroupID:   params.GroupID,
		Target:    params.Target,
		IsPremium: params.IsPremium,
		CreatedAt: now,
		YearID:    year.ID,
	})

	if err := s.save(); err != nil {
		return pledge.AddedCommitment{}, err
	}

	return pledge.AddedCommitment{
		ID:        id,
		PersonID:  params.PersonID,
		FullName:  params.FullName,
		GroupID:   params.GroupID,
		GroupName: group.Name,
		Target:    params.Target,
		IsPremium: params.IsPremium,
		CreatedAt: now,
	}, nil
}

// RecentCommitments returns the newest limit current-year commitments
// joined with display names.
func (s *Store) RecentCommitments(limit int) []pledge.CommitmentView {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	return pledge.RecentCommitments(s.doc.Commitments, s.doc.Persons, s.doc.Groups, year.ID, limit)
}

// LatestTargets maps each donor to the target of their newest
// current-year commitment.
func (s *Store) LatestTargets() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.currentYearLocked()
	return pledge.LatestTargets(s.doc.Commitments, year.ID)
}
