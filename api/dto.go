/*
dto.go - Request and response shapes of the HTTP boundary

PURPOSE:
  Every response carries ok:true plus the data, or ok:false plus a
  human-readable error string. Mutating endpoints also return the
  refreshed list their caller re-renders, so the dashboard never needs
  a follow-up fetch after a write.

NAMING CONVENTION:
  *Request: request body types from clients
  *Response: response wrappers (all embed okBody)
*/
package api

import (
	"github.com/pledgewall/pledge-engine/pledge"
)

// okBody is embedded in every success response.
type okBody struct {
	OK bool `json:"ok"`
}

// errorResponse is the uniform failure envelope.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// =============================================================================
// REQUESTS
// =============================================================================

type upsertPersonRequest struct {
	ID        string  `json:"id"`
	FullName  string  `json:"fullName"`
	GroupID   *string `json:"groupId"`
	IsPremium bool    `json:"isPremium"`
}

type createGroupRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	LogoPath *string `json:"logoPath"`
}

type updateGroupRequest struct {
	Name     string  `json:"name"`
	LogoPath *string `json:"logoPath"`
}

type addCommitmentRequest struct {
	PersonID  string  `json:"personId"`
	FullName  string  `json:"fullName"`
	GroupID   string  `json:"groupId"`
	Target    float64 `json:"target"`
	IsPremium bool    `json:"isPremium"`
}

type createCollectionDayRequest struct {
	Name string `json:"name"`
}

type updateCollectionDayRequest struct {
	Name string `json:"name"`
}

type setCollectionAmountRequest struct {
	PersonID string  `json:"personId"`
	DayID    int     `json:"dayId"`
	Amount   float64 `json:"amount"`
}

type createAnnouncementRequest struct {
	Type         string         `json:"type"`
	Title        string         `json:"title"`
	Text         string         `json:"text"`
	Signature    string         `json:"signature"`
	ExpiresAtISO string         `json:"expiresAtIso"`
	Payload      map[string]any `json:"payload"`
}

type startYearRequest struct {
	Label   string `json:"label"`
	Archive bool   `json:"archive"`
}

type archiveRequest struct {
	YearID int `json:"yearId"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type personsResponse struct {
	okBody
	Persons []pledge.Person `json:"persons"`
}

type personResponse struct {
	okBody
	Person  *pledge.Person  `json:"person"`
	Persons []pledge.Person `json:"persons,omitempty"`
}

type groupsResponse struct {
	okBody
	Groups []pledge.Group `json:"groups"`
}

type commitmentResponse struct {
	okBody
	Commitment pledge.AddedCommitment `json:"commitment"`
}

type commitmentsResponse struct {
	okBody
	Commitments []pledge.CommitmentView `json:"commitments"`
}

type targetsResponse struct {
	okBody
	Targets map[string]float64 `json:"targets"`
}

type daysResponse struct {
	okBody
	Day  *pledge.CollectionDay  `json:"day,omitempty"`
	Days []pledge.CollectionDay `json:"days"`
}

type collectionsResponse struct {
	okBody
	Days        []pledge.CollectionDay `json:"days,omitempty"`
	Collections []pledge.Collection    `json:"collections"`
}

type progressResponse struct {
	okBody
	Progress map[string]pledge.Progress `json:"progress"`
}

type personProgressResponse struct {
	okBody
	Progress pledge.Progress `json:"progress"`
}

type announcementsResponse struct {
	okBody
	Announcement        *pledge.Announcement  `json:"announcement,omitempty"`
	Announcements       []pledge.Announcement `json:"announcements"`
	ActiveAnnouncements []pledge.Announcement `json:"activeAnnouncements"`
}

type activeAnnouncementsResponse struct {
	okBody
	ActiveAnnouncements []pledge.Announcement `json:"activeAnnouncements"`
}

type yearResponse struct {
	okBody
	Year  pledge.Year   `json:"year"`
	Years []pledge.Year `json:"years,omitempty"`
}

type archiveResponse struct {
	okBody
	Path string `json:"path"`
}

// dashboardResponse is the composite startup snapshot for the staff
// window: everything it renders, in one call.
type dashboardResponse struct {
	okBody
	Year                pledge.Year             `json:"year"`
	Groups              []pledge.Group          `json:"groups"`
	Commitments         []pledge.CommitmentView `json:"commitments"`
	Persons             []pledge.Person         `json:"persons"`
	CollectionDays      []pledge.CollectionDay  `json:"collectionDays"`
	Collections         []pledge.Collection     `json:"collections"`
	Targets             map[string]float64      `json:"targets"`
	Announcements       []pledge.Announcement   `json:"announcements"`
	ActiveAnnouncements []pledge.Announcement   `json:"activeAnnouncements"`
}
