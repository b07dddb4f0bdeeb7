package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/ical"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

// ExportsHandler renders a club's schedule as an iCalendar feed; mounted
// behind RequireClubAccess.
type ExportsHandler struct {
	clubs  repository.ClubRepository
	events repository.EventRepository
}

func NewExportsHandler(clubs repository.ClubRepository, events repository.EventRepository) *ExportsHandler {
	return &ExportsHandler{clubs: clubs, events: events}
}

func (h *ExportsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/schedule.ics", h.Schedule)

	return r
}

// Schedule exports games and trainings in one calendar. A type query
// parameter restricts the feed to one of the two.
func (h *ExportsHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	club, err := h.clubs.FindByID(r.Context(), clubID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if club == nil {
		writeError(w, errors.NotFound("Verein nicht gefunden."))
		return
	}

	types := []model.EventType{model.EventGame, model.EventTraining}
	if raw := r.URL.Query().Get("type"); raw != "" {
		typ := model.EventType(raw)
		if !typ.Valid() {
			writeError(w, errors.ValidationError("Ungültiger Termintyp."))
			return
		}
		types = []model.EventType{typ}
	}

	var entries []model.ScheduleEntry
	for _, typ := range types {
		part, err := h.events.ListScheduleByClub(r.Context(), typ, clubID)
		if err != nil {
			writeError(w, errors.Database(err))
			return
		}
		entries = append(entries, part...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Date, entries[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})

	calendar := ical.Render(fmt.Sprintf("Terminplan %s", club.Name), entries)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="terminplan.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(calendar))
}
