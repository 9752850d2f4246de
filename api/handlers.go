/*
handlers.go - HTTP handlers for the pledge engine

PURPOSE:
  Exposes the store over HTTP for the two window surfaces. Handles
  request parsing, field validation, and the uniform result envelope;
  all data work is delegated to the store and the derived views.

ERROR BOUNDARY:
  Every error becomes {ok:false, error:"..."} - the UI shows the
  message verbatim and keeps its prior state. Status codes:
  - 400: validation, duplicate group
  - 404: update/reference target missing
  - 500: document write failures and anything else

COMPOSITE RESPONSES:
  Mutating endpoints return the refreshed list alongside the result,
  matching what the dashboard re-renders after each action.

SEE ALSO:
  - dto.go: Request/response shapes
  - events.go: Push relay to the display surface
  - server.go: Router setup
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pledgewall/pledge-engine/pledge"
	"github.com/pledgewall/pledge-engine/store/jsonfile"
	"github.com/pledgewall/pledge-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Limits caps the list sizes the boundary returns.
type Limits struct {
	RecentCommitments int
	Persons           int
	Search            int
}

// DefaultLimits mirrors the dashboard's view sizes.
var DefaultLimits = Limits{RecentCommitments: 200, Persons: 500, Search: 50}

// Handler holds the dependencies of the HTTP boundary.
type Handler struct {
	Store      *jsonfile.Store
	Hub        *Hub
	Limits     Limits
	ArchiveDir string
}

// NewHandler creates a handler around the store and push hub.
func NewHandler(store *jsonfile.Store, hub *Hub) *Handler {
	return &Handler{
		Store:      store,
		Hub:        hub,
		Limits:     DefaultLimits,
		ArchiveDir: "./archives",
	}
}

// =============================================================================
// RESULT ENVELOPE
// =============================================================================

func (h *Handler) respond(w http.ResponseWriter, op string, status int, v any) {
	requestsTotal.WithLabelValues(op, "ok").Inc()
	writeJSON(w, status, v)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	requestsTotal.WithLabelValues(op, "error").Inc()

	status := http.StatusInternalServerError
	switch {
	case pledge.IsNotFound(err):
		status = http.StatusNotFound
	case pledge.IsClientError(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{OK: false, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &pledge.ValidationError{Field: "body", Message: "invalid JSON request body"}
	}
	return nil
}

func ok() okBody { return okBody{OK: true} }

// =============================================================================
// DASHBOARD SNAPSHOT
// =============================================================================

// Dashboard returns everything the staff window renders at startup.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "dashboard", http.StatusOK, dashboardResponse{
		okBody:              ok(),
		Year:                h.Store.CurrentYear(),
		Groups:              h.Store.ListGroups(),
		Commitments:         h.Store.RecentCommitments(h.Limits.RecentCommitments),
		Persons:             h.Store.ListPersons(h.Limits.Persons),
		CollectionDays:      h.Store.ListCollectionDays(),
		Collections:         h.Store.ListCollections(),
		Targets:             h.Store.LatestTargets(),
		Announcements:       h.Store.ListAnnouncements(),
		ActiveAnnouncements: h.Store.ActiveAnnouncements(),
	})
}

// =============================================================================
// PERSON HANDLERS
// =============================================================================

func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", h.Limits.Persons)
	h.respond(w, "list-persons", http.StatusOK, personsResponse{
		okBody:  ok(),
		Persons: h.Store.ListPersons(limit),
	})
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resp := personResponse{okBody: ok()}
	if person, found := h.Store.FindPerson(id); found {
		resp.Person = &person
	}
	h.respond(w, "get-person", http.StatusOK, resp)
}

func (h *Handler) UpsertPerson(w http.ResponseWriter, r *http.Request) {
	var req upsertPersonRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "upsert-person", err)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		h.fail(w, "upsert-person", &pledge.ValidationError{Field: "id", Message: "person id is required"})
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		h.fail(w, "upsert-person", &pledge.ValidationError{Field: "fullName", Message: "full name is required"})
		return
	}

	person, err := h.Store.UpsertPerson(req.ID, req.FullName, req.GroupID, req.IsPremium)
	if err != nil {
		h.fail(w, "upsert-person", err)
		return
	}
	h.respond(w, "upsert-person", http.StatusOK, personResponse{
		okBody:  ok(),
		Person:  &person,
		Persons: h.Store.ListPersons(h.Limits.Persons),
	})
}

func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePerson(chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete-person", err)
		return
	}
	h.respond(w, "delete-person", http.StatusOK, personsResponse{
		okBody:  ok(),
		Persons: h.Store.ListPersons(h.Limits.Persons),
	})
}

func (h *Handler) SearchPersons(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", h.Limits.Search)
	h.respond(w, "search-persons", http.StatusOK, personsResponse{
		okBody:  ok(),
		Persons: h.Store.SearchPersons(r.URL.Query().Get("q"), limit),
	})
}

// =============================================================================
// GROUP HANDLERS
// =============================================================================

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "list-groups", http.StatusOK, groupsResponse{
		okBody: ok(),
		Groups: h.Store.ListGroups(),
	})
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "create-group", err)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		h.fail(w, "create-group", &pledge.ValidationError{Field: "id", Message: "group id is required"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.fail(w, "create-group", &pledge.ValidationError{Field: "name", Message: "group name is required"})
		return
	}

	if _, err := h.Store.CreateGroup(req.ID, req.Name, req.LogoPath); err != nil {
		h.fail(w, "create-group", err)
		return
	}
	h.respond(w, "create-group", http.StatusOK, groupsResponse{
		okBody: ok(),
		Groups: h.Store.ListGroups(),
	})
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req updateGroupRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "update-group", err)
		return
	}

	if _, err := h.Store.UpdateGroup(chi.URLParam(r, "id"), req.Name, req.LogoPath); err != nil {
		h.fail(w, "update-group", err)
		return
	}
	h.respond(w, "update-group", http.StatusOK, groupsResponse{
		okBody: ok(),
		Groups: h.Store.ListGroups(),
	})
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteGroup(chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete-group", err)
		return
	}
	h.respond(w, "delete-group", http.StatusOK, groupsResponse{
		okBody: ok(),
		Groups: h.Store.ListGroups(),
	})
}

// =============================================================================
// COMMITMENT HANDLERS
// =============================================================================

// AddCommitment records a pledge and pushes it to the display surface.
func (h *Handler) AddCommitment(w http.ResponseWriter, r *http.Request) {
	var req addCommitmentRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "add-commitment", err)
		return
	}
	if strings.TrimSpace(req.PersonID) == "" {
		h.fail(w, "add-commitment", &pledge.ValidationError{Field: "personId", Message: "person id is required"})
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		h.fail(w, "add-commitment", &pledge.ValidationError{Field: "fullName", Message: "full name is required"})
		return
	}
	if strings.TrimSpace(req.GroupID) == "" {
		h.fail(w, "add-commitment", &pledge.ValidationError{Field: "groupId", Message: "group id is required"})
		return
	}
	if req.Target <= 0 {
		h.fail(w, "add-commitment", &pledge.ValidationError{Field: "target", Message: "target must be a positive amount"})
		return
	}

	saved, err := h.Store.AddCommitment(jsonfile.AddCommitmentParams{
		PersonID:  req.PersonID,
		FullName:  req.FullName,
		GroupID:   req.GroupID,
		Target:    req.Target,
		IsPremium: req.IsPremium,
	})
	if err != nil {
		h.fail(w, "add-commitment", err)
		return
	}

	h.Hub.Publish(EventCommitmentCreated, saved)
	h.respond(w, "add-commitment", http.StatusCreated, commitmentResponse{
		okBody:     ok(),
		Commitment: saved,
	})
}

func (h *Handler) RecentCommitments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", h.Limits.RecentCommitments)
	h.respond(w, "recent-commitments", http.StatusOK, commitmentsResponse{
		okBody:      ok(),
		Commitments: h.Store.RecentCommitments(limit),
	})
}

func (h *Handler) LatestTargets(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "latest-targets", http.StatusOK, targetsResponse{
		okBody:  ok(),
		Targets: h.Store.LatestTargets(),
	})
}

// =============================================================================
// COLLECTION DAY HANDLERS
// =============================================================================

func (h *Handler) ListCollectionDays(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "list-collection-days", http.StatusOK, daysResponse{
		okBody: ok(),
		Days:   h.Store.ListCollectionDays(),
	})
}

func (h *Handler) CreateCollectionDay(w http.ResponseWriter, r *http.Request) {
	var req createCollectionDayRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "create-collection-day", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.fail(w, "create-collection-day", &pledge.ValidationError{Field: "name", Message: "day name is required"})
		return
	}

	day, err := h.Store.CreateCollectionDay(req.Name)
	if err != nil {
		h.fail(w, "create-collection-day", err)
		return
	}
	h.respond(w, "create-collection-day", http.StatusCreated, daysResponse{
		okBody: ok(),
		Day:    &day,
		Days:   h.Store.ListCollectionDays(),
	})
}

func (h *Handler) UpdateCollectionDay(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.fail(w, "update-collection-day", err)
		return
	}
	var req updateCollectionDayRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "update-collection-day", err)
		return
	}

	day, err := h.Store.UpdateCollectionDay(id, req.Name)
	if err != nil {
		h.fail(w, "update-collection-day", err)
		return
	}
	h.respond(w, "update-collection-day", http.StatusOK, daysResponse{
		okBody: ok(),
		Day:    &day,
		Days:   h.Store.ListCollectionDays(),
	})
}

func (h *Handler) DeleteCollectionDay(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.fail(w, "delete-collection-day", err)
		return
	}
	if err := h.Store.DeleteCollectionDay(id); err != nil {
		h.fail(w, "delete-collection-day", err)
		return
	}
	h.respond(w, "delete-collection-day", http.StatusOK, collectionsResponse{
		okBody:      ok(),
		Days:        h.Store.ListCollectionDays(),
		Collections: h.Store.ListCollections(),
	})
}

// =============================================================================
// COLLECTION HANDLERS
// =============================================================================

func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "list-collections", http.StatusOK, collectionsResponse{
		okBody:      ok(),
		Collections: h.Store.ListCollections(),
	})
}

func (h *Handler) SetCollectionAmount(w http.ResponseWriter, r *http.Request) {
	var req setCollectionAmountRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "set-collection-amount", err)
		return
	}
	if strings.TrimSpace(req.PersonID) == "" {
		h.fail(w, "set-collection-amount", &pledge.ValidationError{Field: "personId", Message: "person id is required"})
		return
	}
	if req.DayID < 1 {
		h.fail(w, "set-collection-amount", &pledge.ValidationError{Field: "dayId", Message: "day id is required"})
		return
	}

	if err := h.Store.SetCollectionAmount(req.PersonID, req.DayID, req.Amount); err != nil {
		h.fail(w, "set-collection-amount", err)
		return
	}
	h.respond(w, "set-collection-amount", http.StatusOK, collectionsResponse{
		okBody:      ok(),
		Collections: h.Store.ListCollections(),
	})
}

func (h *Handler) ProgressAll(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "progress", http.StatusOK, progressResponse{
		okBody:   ok(),
		Progress: h.Store.ProgressAll(),
	})
}

func (h *Handler) PersonProgress(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "person-progress", http.StatusOK, personProgressResponse{
		okBody:   ok(),
		Progress: h.Store.PersonProgress(chi.URLParam(r, "id")),
	})
}

// =============================================================================
// ANNOUNCEMENT HANDLERS
// =============================================================================

func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "list-announcements", http.StatusOK, announcementsResponse{
		okBody:              ok(),
		Announcements:       h.Store.ListAnnouncements(),
		ActiveAnnouncements: h.Store.ActiveAnnouncements(),
	})
}

func (h *Handler) ActiveAnnouncements(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "active-announcements", http.StatusOK, activeAnnouncementsResponse{
		okBody:              ok(),
		ActiveAnnouncements: h.Store.ActiveAnnouncements(),
	})
}

// CreateAnnouncement validates, stores, and pushes the refreshed active
// list to the display surface.
func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req createAnnouncementRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "create-announcement", err)
		return
	}

	annType := pledge.AnnouncementType(req.Type)
	if !annType.Valid() {
		h.fail(w, "create-announcement", &pledge.ValidationError{
			Field:   "type",
			Message: "type must be one of ticker, banner, push",
		})
		return
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Text) == "" {
		h.fail(w, "create-announcement", &pledge.ValidationError{
			Field:   "text",
			Message: "announcement needs a title or text",
		})
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAtISO != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAtISO)
		if err != nil {
			h.fail(w, "create-announcement", &pledge.ValidationError{
				Field:   "expiresAtIso",
				Message: "expiry must be an RFC 3339 timestamp",
			})
			return
		}
		expiresAt = &parsed
	}

	ann, err := h.Store.CreateAnnouncement(jsonfile.CreateAnnouncementParams{
		Type:      annType,
		Title:     req.Title,
		Text:      req.Text,
		Signature: req.Signature,
		ExpiresAt: expiresAt,
		Payload:   req.Payload,
	})
	if err != nil {
		h.fail(w, "create-announcement", err)
		return
	}

	active := h.Store.ActiveAnnouncements()
	h.Hub.Publish(EventActiveAnnouncements, active)
	h.respond(w, "create-announcement", http.StatusCreated, announcementsResponse{
		okBody:              ok(),
		Announcement:        &ann,
		Announcements:       h.Store.ListAnnouncements(),
		ActiveAnnouncements: active,
	})
}

func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.fail(w, "delete-announcement", err)
		return
	}
	if err := h.Store.DeleteAnnouncement(id); err != nil {
		h.fail(w, "delete-announcement", err)
		return
	}

	active := h.Store.ActiveAnnouncements()
	h.Hub.Publish(EventActiveAnnouncements, active)
	h.respond(w, "delete-announcement", http.StatusOK, announcementsResponse{
		okBody:              ok(),
		Announcements:       h.Store.ListAnnouncements(),
		ActiveAnnouncements: active,
	})
}

// =============================================================================
// YEAR & ADMIN HANDLERS
// =============================================================================

func (h *Handler) CurrentYear(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "current-year", http.StatusOK, yearResponse{
		okBody: ok(),
		Year:   h.Store.CurrentYear(),
		Years:  h.Store.ListYears(),
	})
}

// StartYear closes the season. With archive:true the closing year is
// exported to SQLite before the new year opens.
func (h *Handler) StartYear(w http.ResponseWriter, r *http.Request) {
	var req startYearRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "start-year", err)
		return
	}

	if req.Archive {
		closing := h.Store.CurrentYear()
		if _, err := h.archiveYear(closing.ID); err != nil {
			h.fail(w, "start-year", err)
			return
		}
	}

	year, err := h.Store.StartYear(req.Label)
	if err != nil {
		h.fail(w, "start-year", err)
		return
	}
	h.respond(w, "start-year", http.StatusCreated, yearResponse{
		okBody: ok(),
		Year:   year,
		Years:  h.Store.ListYears(),
	})
}

// ArchiveYear exports a year (default: the current one) to a SQLite
// file for reporting.
func (h *Handler) ArchiveYear(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "archive-year", err)
		return
	}
	yearID := req.YearID
	if yearID == 0 {
		yearID = h.Store.CurrentYear().ID
	}

	path, err := h.archiveYear(yearID)
	if err != nil {
		h.fail(w, "archive-year", err)
		return
	}
	h.respond(w, "archive-year", http.StatusOK, archiveResponse{
		okBody: ok(),
		Path:   path,
	})
}

func (h *Handler) archiveYear(yearID int) (string, error) {
	extract, err := h.Store.ExtractYear(yearID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(h.ArchiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}
	name := fmt.Sprintf("%s.db", extract.Year.Label)
	path := filepath.Join(h.ArchiveDir, name)
	if err := sqlite.ArchiveYear(path, extract); err != nil {
		return "", err
	}
	return path, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func urlInt(r *http.Request, key string) (int, error) {
	raw := chi.URLParam(r, key)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &pledge.ValidationError{Field: key, Message: "must be an integer id"}
	}
	return v, nil
}
