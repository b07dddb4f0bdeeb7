package handler

import (
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
	"github.com/teammanager/server-go/internal/service"
)

// EventsHandler serves one event type. It is mounted twice, once under
// /games and once under /trainings, with the type fixed at construction.
type EventsHandler struct {
	typ        model.EventType
	events     repository.EventRepository
	teams      repository.TeamRepository
	photos     repository.PhotoRepository
	attendance *service.AttendanceService
	access     *middleware.AccessMiddleware
}

func NewEventsHandler(
	typ model.EventType,
	events repository.EventRepository,
	teams repository.TeamRepository,
	photos repository.PhotoRepository,
	attendance *service.AttendanceService,
	access *middleware.AccessMiddleware,
) *EventsHandler {
	return &EventsHandler{
		typ:        typ,
		events:     events,
		teams:      teams,
		photos:     photos,
		attendance: attendance,
		access:     access,
	}
}

func (h *EventsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	manage := h.access.RequireRole(model.RoleVereinsAdmin, model.RoleTrainer)

	r.Get("/", h.List)
	r.With(manage).Post("/", h.Create)
	r.Get("/{eventID}", h.Get)
	r.With(manage).Put("/{eventID}", h.Update)
	r.With(manage).Delete("/{eventID}", h.Delete)
	r.With(manage).Put("/{eventID}/result", h.SetResult)

	r.Get("/{eventID}/attendance", h.ListAttendance)
	r.Post("/{eventID}/attendance", h.SetAttendance)

	r.Get("/{eventID}/photos", h.ListPhotos)
	r.Post("/{eventID}/photos", h.UploadPhoto)

	return r
}

type eventBody struct {
	Title        string  `json:"title"`
	Date         *string `json:"date"`
	Time         *string `json:"time"`
	LocationText *string `json:"locationText"`
	VenueID      *int64  `json:"venueId"`
	Opponent     *string `json:"opponent"`
	TeamID       int64   `json:"teamId"`
}

func parseEventDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, errors.ValidationError("Ungültiges Datum. Erwartet wird JJJJ-MM-TT.")
	}
	return &d, nil
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	teamID, err := queryID(r, "teamId")
	if err != nil {
		writeError(w, err)
		return
	}

	ok, err := h.teams.BelongsToClub(r.Context(), teamID, clubID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if !ok {
		writeError(w, errors.NotFound("Mannschaft nicht gefunden."))
		return
	}

	events, err := h.events.ListByTeam(r.Context(), h.typ, teamID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())
	sess := middleware.GetSession(r.Context())

	var body eventBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Title == "" || body.TeamID <= 0 {
		writeError(w, errors.ValidationError("Titel und Mannschaft sind erforderlich."))
		return
	}

	ok, err := h.teams.BelongsToClub(r.Context(), body.TeamID, clubID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if !ok {
		writeError(w, errors.NotFound("Mannschaft nicht gefunden."))
		return
	}

	date, err := parseEventDate(body.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	params := model.CreateEventParams{
		Type:         h.typ,
		Title:        body.Title,
		Date:         date,
		StartTime:    body.Time,
		LocationText: body.LocationText,
		VenueID:      body.VenueID,
		TeamID:       body.TeamID,
		CreatedBy:    *sess.UserID,
	}
	if h.typ == model.EventGame {
		params.Opponent = body.Opponent
	}

	event, err := h.events.Create(r.Context(), params)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}

	// Seed pending responses so the team sees the open invitation right away.
	if err := h.attendance.SeedForEvent(r.Context(), h.typ, event.ID, event.TeamID); err != nil {
		log.Error().Err(err).Int64("eventId", event.ID).Str("eventType", string(h.typ)).
			Msg("failed to seed attendance")
	}

	writeJSON(w, http.StatusCreated, event)
}

func (h *EventsHandler) resolve(r *http.Request) (*model.Event, error) {
	clubID, _ := middleware.GetClubID(r.Context())

	eventID, err := urlID(r, "eventID")
	if err != nil {
		return nil, err
	}

	ok, err := h.events.BelongsToClub(r.Context(), h.typ, eventID, clubID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if !ok {
		return nil, errors.NotFound("Termin nicht gefunden.")
	}

	event, err := h.events.FindByID(r.Context(), h.typ, eventID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if event == nil {
		return nil, errors.NotFound("Termin nicht gefunden.")
	}
	return event, nil
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	event, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body eventBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Title == "" {
		writeError(w, errors.ValidationError("Der Titel ist erforderlich."))
		return
	}

	date, err := parseEventDate(body.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	params := model.UpdateEventParams{
		Title:        body.Title,
		Date:         date,
		StartTime:    body.Time,
		LocationText: body.LocationText,
		VenueID:      body.VenueID,
	}
	if h.typ == model.EventGame {
		params.Opponent = body.Opponent
	}

	updated, err := h.events.Update(r.Context(), h.typ, event.ID, params)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	event, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.events.Delete(r.Context(), h.typ, event.ID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Termin gelöscht.")
}

// SetResult stores the report for a finished event as markdown. A null body
// clears the result.
func (h *EventsHandler) SetResult(w http.ResponseWriter, r *http.Request) {
	event, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ResultMarkdown *string `json:"resultMarkdown"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.events.SetResult(r.Context(), h.typ, event.ID, body.ResultMarkdown)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *EventsHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	event, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.attendance.ListByEvent(r.Context(), h.typ, event.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.Attendance{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// SetAttendance records the calling user's own response.
func (h *EventsHandler) SetAttendance(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	event, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Status model.AttendanceStatus `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	att, err := h.attendance.SetStatus(r.Context(), *sess.UserID, h.typ, event.ID, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

func (h *EventsHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	event, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	photos, err := h.photos.ListByEvent(r.Context(), h.typ, event.ID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	writeJSON(w, http.StatusOK, photos)
}

// UploadPhoto accepts an image as multipart form or raw body; the type is
// sniffed server side.
func (h *EventsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	event, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	data, filename, err := readUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(data) == 0 {
		writeError(w, errors.ValidationError("Keine Datei hochgeladen."))
		return
	}

	mtype := mimetype.Detect(data)
	if !isAllowedImage(mtype.String()) {
		writeError(w, errors.ValidationError("Nur JPEG-, PNG-, GIF- oder WebP-Bilder sind erlaubt."))
		return
	}

	if filename == "" {
		filename = r.URL.Query().Get("filename")
	}
	if filename == "" {
		filename = "foto" + mtype.Extension()
	}

	photo, err := h.photos.Create(r.Context(), model.CreatePhotoParams{
		EventType:  h.typ,
		EventID:    event.ID,
		Data:       data,
		MimeType:   mtype.String(),
		Filename:   filename,
		UploadedBy: *sess.UserID,
	})
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}
