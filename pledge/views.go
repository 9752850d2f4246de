/*
views.go - Derived views over the raw record slices

PURPOSE:
  Pure functions that compute the cross-entity aggregates the UI
  consumes. Nothing here mutates or persists; the store passes in the
  relevant slices and the caller gets back fresh values.

VIEWS:
  ActiveAnnouncements:  current-year announcements not yet expired
  AnnouncementsForYear: all current-year announcements, newest first
  LatestTargets:        person_id -> target of the newest commitment
  RecentCommitments:    newest N commitments joined with display names

ORDERING:
  "Newest" always means highest id, never wall-clock time. Ids are
  allocated monotonically, so id order is creation order even if the
  machine clock moves backwards between pledges.
*/
package pledge

import (
	"sort"
	"time"
)

// ActiveAnnouncements returns the year's announcements that are visible
// at the given instant, newest first. An announcement with no expiry is
// always visible; one whose expiry is not strictly in the future is
// excluded.
func ActiveAnnouncements(anns []Announcement, yearID int, now time.Time) []Announcement {
	out := make([]Announcement, 0)
	for _, a := range anns {
		if a.YearID == yearID && a.Active(now) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// AnnouncementsForYear returns every announcement of the year, expired
// or not, newest first.
func AnnouncementsForYear(anns []Announcement, yearID int) []Announcement {
	out := make([]Announcement, 0)
	for _, a := range anns {
		if a.YearID == yearID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// LatestTargets folds the year's commitments, in ascending id order,
// into a person_id -> target map. Each later commitment for the same
// person overwrites the earlier value, so the newest commitment wins.
func LatestTargets(commitments []Commitment, yearID int) map[string]float64 {
	relevant := make([]Commitment, 0)
	for _, c := range commitments {
		if c.YearID == yearID {
			relevant = append(relevant, c)
		}
	}
	sort.Slice(relevant, func(i, j int) bool { return relevant[i].ID < relevant[j].ID })

	targets := make(map[string]float64, len(relevant))
	for _, c := range relevant {
		targets[c.PersonID] = c.Target
	}
	return targets
}

// RecentCommitments returns the newest limit commitments of the year,
// each joined with the person and group display names. A broken
// reference degrades to an empty name, never an error.
func RecentCommitments(commitments []Commitment, persons []Person, groups []Group, yearID, limit int) []CommitmentView {
	relevant := make([]Commitment, 0)
	for _, c := range commitments {
		if c.YearID == yearID {
			relevant = append(relevant, c)
		}
	}
	sort.Slice(relevant, func(i, j int) bool { return relevant[i].ID > relevant[j].ID })
	if limit >= 0 && len(relevant) > limit {
		relevant = relevant[:limit]
	}

	personNames := make(map[string]string, len(persons))
	for _, p := range persons {
		personNames[p.ID] = p.FullName
	}
	groupNames := make(map[string]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}

	views := make([]CommitmentView, len(relevant))
	for i, c := range relevant {
		views[i] = CommitmentView{
			ID:        c.ID,
			PersonID:  c.PersonID,
			GroupID:   c.GroupID,
			Target:    c.Target,
			IsPremium: c.IsPremium,
			CreatedAt: c.CreatedAt,
			Name:      personNames[c.PersonID],
			GroupName: groupNames[c.GroupID],
		}
	}
	return views
}
