package jsonfile_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pledgewall/pledge-engine/pledge"
	"github.com/pledgewall/pledge-engine/store/jsonfile"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testTime = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*jsonfile.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := jsonfile.New(dir, jsonfile.WithClock(func() time.Time { return testTime }))
	require.NoError(t, err)
	return store, dir
}

func strPtr(s string) *string { return &s }

// =============================================================================
// LOAD OUTCOME TESTS
// =============================================================================

func TestNew_EmptyDirectory_Bootstraps(t *testing.T) {
	// GIVEN: A data directory with no document
	// WHEN: Opening the store
	// THEN: A default document is seeded and written to disk

	store, dir := newTestStore(t)

	assert.Equal(t, jsonfile.OutcomeBootstrapped, store.Outcome())

	year := store.CurrentYear()
	assert.Equal(t, 1, year.ID)
	assert.Equal(t, "2026", year.Label)
	assert.True(t, year.IsCurrent)

	groups := store.ListGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Sample Group A", groups[0].Name)
	assert.Equal(t, "Sample Group B", groups[1].Name)

	_, err := os.Stat(filepath.Join(dir, jsonfile.FileName))
	assert.NoError(t, err, "bootstrap should write the document immediately")
}

func TestNew_ExistingDocument_Loads(t *testing.T) {
	// GIVEN: A document written by a previous run
	// WHEN: Opening the store again
	// THEN: The prior state is back, outcome is "loaded"

	dir := t.TempDir()
	first, err := jsonfile.New(dir, jsonfile.WithClock(func() time.Time { return testTime }))
	require.NoError(t, err)

	_, err = first.UpsertPerson("123456789", "Dana Levi", nil, false)
	require.NoError(t, err)

	second, err := jsonfile.New(dir, jsonfile.WithClock(func() time.Time { return testTime }))
	require.NoError(t, err)

	assert.Equal(t, jsonfile.OutcomeLoaded, second.Outcome())
	person, found := second.FindPerson("123456789")
	require.True(t, found)
	assert.Equal(t, "Dana Levi", person.FullName)
}

func TestNew_CorruptDocument_Recovers(t *testing.T) {
	// GIVEN: A document that is not valid JSON
	// WHEN: Opening the store
	// THEN: A fresh default document replaces it instead of failing

	dir := t.TempDir()
	path := filepath.Join(dir, jsonfile.FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := jsonfile.New(dir, jsonfile.WithClock(func() time.Time { return testTime }))
	require.NoError(t, err)

	assert.Equal(t, jsonfile.OutcomeRecovered, store.Outcome())
	assert.Equal(t, "2026", store.CurrentYear().Label)

	// The replacement was written, so the next open loads cleanly.
	again, err := jsonfile.New(dir, jsonfile.WithClock(func() time.Time { return testTime }))
	require.NoError(t, err)
	assert.Equal(t, jsonfile.OutcomeLoaded, again.Outcome())
}

func TestNew_RoundTrip_PreservesEverything(t *testing.T) {
	// GIVEN: A store with one record of every kind
	// WHEN: Reopening from disk
	// THEN: Every record survives the rewrite unchanged

	dir := t.TempDir()
	store, err := jsonfile.New(dir, jsonfile.WithClock(func() time.Time { return testTime }))
	require.NoError(t, err)

	_, err = store.CreateGroup("g1", "Alpha", strPtr("/logos/alpha.png"))
	require.NoError(t, err)
	added, err := store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID: "123456789", FullName: "Dana Levi", GroupID: "g1", Target: 1000,
	})
	require.NoError(t, err)
	day, err := store.CreateCollectionDay("Purim")
	require.NoError(t, err)
	require.NoError(t, store.SetCollectionAmount("123456789", day.ID, 400))
	expiry := testTime.Add(time.Hour)
	_, err = store.CreateAnnouncement(jsonfile.CreateAnnouncementParams{
		Type: pledge.AnnouncementTicker, Text: "welcome", ExpiresAt: &expiry,
	})
	require.NoError(t, err)

	reopened, err := jsonfile.New(dir, jsonfile.WithClock(func() time.Time { return testTime }))
	require.NoError(t, err)

	person, found := reopened.FindPerson("123456789")
	require.True(t, found)
	assert.Equal(t, "Dana Levi", person.FullName)

	views := reopened.RecentCommitments(10)
	require.Len(t, views, 1)
	assert.Equal(t, added.ID, views[0].ID)
	assert.Equal(t, "Alpha", views[0].GroupName)
	assert.True(t, added.CreatedAt.Equal(views[0].CreatedAt))

	assert.Len(t, reopened.ListCollectionDays(), 1)
	assert.Len(t, reopened.ListCollections(), 1)
	assert.Len(t, reopened.ActiveAnnouncements(), 1)
}

// =============================================================================
// GROUP REPOSITORY TESTS
// =============================================================================

func TestCreateGroup_DuplicateIDWithinYear_Rejected(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.CreateGroup("g1", "Alpha", nil)
	require.NoError(t, err)

	_, err = store.CreateGroup("g1", "Alpha Again", nil)
	assert.ErrorIs(t, err, pledge.ErrDuplicateGroup)
}

func TestCreateGroup_SameIDAfterRollover_Allowed(t *testing.T) {
	// GIVEN: Group "g1" exists in the current year
	// WHEN: A new year starts and "g1" is created again
	// THEN: The id is free again; uniqueness is per (id, year)

	store, _ := newTestStore(t)
	_, err := store.CreateGroup("g1", "Alpha", nil)
	require.NoError(t, err)

	_, err = store.StartYear("2027")
	require.NoError(t, err)

	_, err = store.CreateGroup("g1", "Alpha Reborn", nil)
	assert.NoError(t, err)
}

func TestUpdateGroup_Missing_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.UpdateGroup("nope", "Renamed", nil)

	assert.True(t, pledge.IsNotFound(err))
}

func TestDeleteGroup_KeepsCommitmentHistory(t *testing.T) {
	// GIVEN: A commitment referencing group "g1"
	// WHEN: The group is deleted
	// THEN: The commitment stays, its group name degrades to ""

	store, _ := newTestStore(t)
	_, err := store.CreateGroup("g1", "Alpha", nil)
	require.NoError(t, err)
	_, err = store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID: "123456789", FullName: "Dana Levi", GroupID: "g1", Target: 1000,
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteGroup("g1"))

	views := store.RecentCommitments(10)
	require.Len(t, views, 1)
	assert.Equal(t, "", views[0].GroupName)
}

func TestDeleteGroup_Unknown_NoOp(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.DeleteGroup("nope"))
}

// =============================================================================
// PERSON REPOSITORY TESTS
// =============================================================================

func TestUpsertPerson_OverwritesProfile(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.UpsertPerson("123456789", "Dana Levi", nil, false)
	require.NoError(t, err)
	_, err = store.UpsertPerson("123456789", "Dana Levi-Cohen", strPtr("g1"), true)
	require.NoError(t, err)

	person, found := store.FindPerson("123456789")
	require.True(t, found)
	assert.Equal(t, "Dana Levi-Cohen", person.FullName)
	require.NotNil(t, person.GroupID)
	assert.Equal(t, "g1", *person.GroupID)
	assert.True(t, person.IsPremium)

	assert.Len(t, store.ListPersons(-1), 1, "upsert must not duplicate the record")
}

func TestDeletePerson_Unknown_NoOp(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.DeletePerson("nope"))
}

func TestSearchPersons(t *testing.T) {
	store, _ := newTestStore(t)
	seed := []struct{ id, name string }{
		{"123456789", "Dana Levi"},
		{"123111111", "Noa Cohen"},
		{"987654321", "Avi Levinson"},
	}
	for _, p := range seed {
		_, err := store.UpsertPerson(p.id, p.name, nil, false)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query string
		ids   []string
	}{
		{name: "empty query returns nothing", query: "   ", ids: []string{}},
		{name: "digits match by id prefix", query: "123", ids: []string{"123456789", "123111111"}},
		{name: "digits never match names", query: "999", ids: []string{}},
		{name: "text matches name substring", query: "levi", ids: []string{"987654321", "123456789"}},
		{name: "case insensitive", query: "LEVI", ids: []string{"987654321", "123456789"}},
		{name: "no match", query: "zzz", ids: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.SearchPersons(tt.query, 50)
			ids := make([]string, len(got))
			for i, p := range got {
				ids[i] = p.ID
			}
			assert.ElementsMatch(t, tt.ids, ids)
		})
	}
}

func TestSearchPersons_Capped(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.UpsertPerson("111", "Dana Levi", nil, false)
	require.NoError(t, err)
	_, err = store.UpsertPerson("112", "Dana Levi the Second", nil, false)
	require.NoError(t, err)

	assert.Len(t, store.SearchPersons("dana", 1), 1)
}

// =============================================================================
// COMMITMENT TESTS
// =============================================================================

func TestAddCommitment_FullScenario(t *testing.T) {
	// GIVEN: Group "Alpha" in the current year
	// WHEN: Recording a first pledge for a new donor
	// THEN: The donor is upserted, id 1 is allocated, the result carries
	//       the group name, and the targets map sees the pledge

	store, _ := newTestStore(t)
	_, err := store.CreateGroup("g1", "Alpha", nil)
	require.NoError(t, err)

	added, err := store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID:  "123456789",
		FullName:  "Dana Levi",
		GroupID:   "g1",
		Target:    1000,
		IsPremium: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, added.ID)
	assert.Equal(t, "Alpha", added.GroupName)
	assert.Equal(t, "Dana Levi", added.FullName)
	assert.True(t, added.CreatedAt.Equal(testTime))

	person, found := store.FindPerson("123456789")
	require.True(t, found)
	assert.Equal(t, "Dana Levi", person.FullName)
	require.NotNil(t, person.GroupID)
	assert.Equal(t, "g1", *person.GroupID)
	assert.True(t, person.IsPremium)

	assert.Equal(t, map[string]float64{"123456789": 1000}, store.LatestTargets())
}

func TestAddCommitment_RaisedPledge_NewRowWins(t *testing.T) {
	// GIVEN: A donor with an existing 1000 pledge
	// WHEN: Recording a second pledge of 1500
	// THEN: Both rows exist, the newer one drives the target

	store, _ := newTestStore(t)
	_, err := store.CreateGroup("g1", "Alpha", nil)
	require.NoError(t, err)

	_, err = store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID: "123456789", FullName: "Dana Levi", GroupID: "g1", Target: 1000,
	})
	require.NoError(t, err)
	second, err := store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID: "123456789", FullName: "Dana Levi", GroupID: "g1", Target: 1500,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, second.ID)
	assert.Len(t, store.RecentCommitments(10), 2)
	assert.Equal(t, map[string]float64{"123456789": 1500}, store.LatestTargets())
}

func TestAddCommitment_UnknownGroup_Rejected(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID: "123456789", FullName: "Dana Levi", GroupID: "nope", Target: 1000,
	})

	assert.ErrorIs(t, err, pledge.ErrGroupNotFound)
	assert.Empty(t, store.RecentCommitments(10), "nothing may be written on rejection")
	_, found := store.FindPerson("123456789")
	assert.False(t, found, "donor must not be upserted when the group check fails")
}

func TestAddCommitment_GroupFromClosedYear_Rejected(t *testing.T) {
	// GIVEN: Group "g1" created before a year rollover
	// WHEN: Pledging to "g1" in the new year
	// THEN: Rejected; the group lookup is current-year scoped

	store, _ := newTestStore(t)
	_, err := store.CreateGroup("g1", "Alpha", nil)
	require.NoError(t, err)
	_, err = store.StartYear("2027")
	require.NoError(t, err)

	_, err = store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID: "123456789", FullName: "Dana Levi", GroupID: "g1", Target: 1000,
	})

	assert.ErrorIs(t, err, pledge.ErrGroupNotFound)
}

// =============================================================================
// COLLECTION TESTS
// =============================================================================

func TestSetCollectionAmount_AndProgress(t *testing.T) {
	// GIVEN: A 1000 pledge and one collection day
	// WHEN: Recording 400 collected
	// THEN: Progress shows 40%

	store, _ := newTestStore(t)
	_, err := store.CreateGroup("g1", "Alpha", nil)
	require.NoError(t, err)
	_, err = store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID: "123456789", FullName: "Dana Levi", GroupID: "g1", Target: 1000,
	})
	require.NoError(t, err)
	day, err := store.CreateCollectionDay("Purim")
	require.NoError(t, err)

	require.NoError(t, store.SetCollectionAmount("123456789", day.ID, 400))

	require.Len(t, store.ListCollections(), 1)
	progress := store.PersonProgress("123456789")
	assert.Equal(t, float64(1000), progress.Target)
	assert.Equal(t, float64(400), progress.Collected)
	assert.Equal(t, float64(600), progress.Remaining)
	assert.Equal(t, 40, progress.Percent)
}

func TestSetCollectionAmount_OverwritesCell(t *testing.T) {
	store, _ := newTestStore(t)
	day, err := store.CreateCollectionDay("Purim")
	require.NoError(t, err)

	require.NoError(t, store.SetCollectionAmount("123456789", day.ID, 400))
	require.NoError(t, store.SetCollectionAmount("123456789", day.ID, 250))

	cells := store.ListCollections()
	require.Len(t, cells, 1)
	assert.Equal(t, float64(250), cells[0].Amount)
}

func TestSetCollectionAmount_NonPositiveClearsCell(t *testing.T) {
	store, _ := newTestStore(t)
	day, err := store.CreateCollectionDay("Purim")
	require.NoError(t, err)
	require.NoError(t, store.SetCollectionAmount("123456789", day.ID, 400))

	require.NoError(t, store.SetCollectionAmount("123456789", day.ID, 0))

	assert.Empty(t, store.ListCollections(), "zero never stores a cell")

	// Clearing an absent cell is a no-op, negative behaves like zero.
	assert.NoError(t, store.SetCollectionAmount("123456789", day.ID, -5))
	assert.Empty(t, store.ListCollections())
}

func TestDeleteCollectionDay_CascadesCells(t *testing.T) {
	// GIVEN: Two days with one cell each
	// WHEN: Deleting the first day
	// THEN: Only its cell disappears

	store, _ := newTestStore(t)
	day1, err := store.CreateCollectionDay("Day 1")
	require.NoError(t, err)
	day2, err := store.CreateCollectionDay("Day 2")
	require.NoError(t, err)
	require.NoError(t, store.SetCollectionAmount("123456789", day1.ID, 100))
	require.NoError(t, store.SetCollectionAmount("123456789", day2.ID, 200))

	require.NoError(t, store.DeleteCollectionDay(day1.ID))

	days := store.ListCollectionDays()
	require.Len(t, days, 1)
	assert.Equal(t, day2.ID, days[0].ID)

	cells := store.ListCollections()
	require.Len(t, cells, 1)
	assert.Equal(t, day2.ID, cells[0].DayID)
}

func TestDeleteCollectionDay_Unknown_NoOp(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.DeleteCollectionDay(99))
}

func TestUpdateCollectionDay_Missing_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.UpdateCollectionDay(99, "Renamed")

	assert.True(t, pledge.IsNotFound(err))
}

func TestProgressAll_IncludesCollectedWithoutTarget(t *testing.T) {
	// GIVEN: One donor with a pledge, another with money collected but
	//        no pledge at all
	// WHEN: Deriving the full progress map
	// THEN: Both donors appear; the second at 0% with target 0

	store, _ := newTestStore(t)
	_, err := store.CreateGroup("g1", "Alpha", nil)
	require.NoError(t, err)
	_, err = store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID: "111", FullName: "Dana Levi", GroupID: "g1", Target: 1000,
	})
	require.NoError(t, err)
	day, err := store.CreateCollectionDay("Purim")
	require.NoError(t, err)
	require.NoError(t, store.SetCollectionAmount("111", day.ID, 400))
	require.NoError(t, store.SetCollectionAmount("222", day.ID, 50))

	all := store.ProgressAll()

	require.Len(t, all, 2)
	assert.Equal(t, 40, all["111"].Percent)
	assert.Equal(t, float64(50), all["222"].Collected)
	assert.Equal(t, 0, all["222"].Percent)
}

// =============================================================================
// ANNOUNCEMENT TESTS
// =============================================================================

func TestAnnouncements_ExpiryFiltering(t *testing.T) {
	// GIVEN: Announcements with future, past, and no expiry
	// WHEN: Reading the active view
	// THEN: Only the unexpired ones are visible; the full list keeps all

	store, _ := newTestStore(t)
	future := testTime.Add(time.Hour)
	past := testTime.Add(-time.Hour)

	forever, err := store.CreateAnnouncement(jsonfile.CreateAnnouncementParams{
		Type: pledge.AnnouncementTicker, Text: "forever",
	})
	require.NoError(t, err)
	fresh, err := store.CreateAnnouncement(jsonfile.CreateAnnouncementParams{
		Type: pledge.AnnouncementBanner, Title: "fresh", ExpiresAt: &future,
	})
	require.NoError(t, err)
	_, err = store.CreateAnnouncement(jsonfile.CreateAnnouncementParams{
		Type: pledge.AnnouncementPush, Text: "stale", ExpiresAt: &past,
	})
	require.NoError(t, err)

	active := store.ActiveAnnouncements()
	require.Len(t, active, 2)
	assert.Equal(t, fresh.ID, active[0].ID, "newest first")
	assert.Equal(t, forever.ID, active[1].ID)

	assert.Len(t, store.ListAnnouncements(), 3)
}

func TestCreateAnnouncement_NilPayloadBecomesEmptyMap(t *testing.T) {
	store, _ := newTestStore(t)

	ann, err := store.CreateAnnouncement(jsonfile.CreateAnnouncementParams{
		Type: pledge.AnnouncementTicker, Text: "hi",
	})
	require.NoError(t, err)

	assert.NotNil(t, ann.Payload)
	assert.Empty(t, ann.Payload)
}

func TestDeleteAnnouncement_Unknown_NoOp(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.DeleteAnnouncement(99))
}

// =============================================================================
// YEAR ROLLOVER TESTS
// =============================================================================

func TestStartYear_ScopesAwayOldRecords(t *testing.T) {
	// GIVEN: A year full of groups, pledges, days, and announcements
	// WHEN: Starting the next year
	// THEN: Current-year views are empty, the old records stay on disk

	store, _ := newTestStore(t)
	_, err := store.CreateGroup("g1", "Alpha", nil)
	require.NoError(t, err)
	_, err = store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID: "123456789", FullName: "Dana Levi", GroupID: "g1", Target: 1000,
	})
	require.NoError(t, err)
	day, err := store.CreateCollectionDay("Purim")
	require.NoError(t, err)
	require.NoError(t, store.SetCollectionAmount("123456789", day.ID, 400))
	_, err = store.CreateAnnouncement(jsonfile.CreateAnnouncementParams{
		Type: pledge.AnnouncementTicker, Text: "hi",
	})
	require.NoError(t, err)

	year, err := store.StartYear("2027")
	require.NoError(t, err)

	assert.Equal(t, 2, year.ID)
	assert.True(t, year.IsCurrent)
	assert.Equal(t, year, store.CurrentYear())

	assert.Empty(t, store.ListGroups())
	assert.Empty(t, store.RecentCommitments(10))
	assert.Empty(t, store.ListCollectionDays())
	assert.Empty(t, store.ListCollections())
	assert.Empty(t, store.ListAnnouncements())
	assert.Empty(t, store.LatestTargets())

	// Persons cross years.
	_, found := store.FindPerson("123456789")
	assert.True(t, found)

	// Exactly one current year, the closed one is still listed.
	years := store.ListYears()
	require.Len(t, years, 2)
	assert.False(t, years[0].IsCurrent)
	assert.True(t, years[1].IsCurrent)
}

func TestStartYear_BlankLabel_Rejected(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.StartYear("   ")

	assert.ErrorIs(t, err, pledge.ErrValidation)
	assert.Len(t, store.ListYears(), 1)
}

func TestExtractYear_BundlesYearRecords(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.CreateGroup("g1", "Alpha", nil)
	require.NoError(t, err)
	_, err = store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID: "123456789", FullName: "Dana Levi", GroupID: "g1", Target: 1000,
	})
	require.NoError(t, err)
	day, err := store.CreateCollectionDay("Purim")
	require.NoError(t, err)
	require.NoError(t, store.SetCollectionAmount("123456789", day.ID, 400))

	closed := store.CurrentYear()
	_, err = store.StartYear("2027")
	require.NoError(t, err)

	extract, err := store.ExtractYear(closed.ID)
	require.NoError(t, err)

	assert.Equal(t, closed.ID, extract.Year.ID)
	assert.Len(t, extract.Groups, 3) // two bootstrap groups plus "g1"
	assert.Len(t, extract.Commitments, 1)
	assert.Len(t, extract.CollectionDays, 1)
	assert.Len(t, extract.Collections, 1)
	assert.Len(t, extract.Persons, 1, "the shared person table rides along")
}

func TestExtractYear_Unknown_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ExtractYear(99)

	assert.True(t, pledge.IsNotFound(err))
}
