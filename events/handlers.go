package events

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/kkcos-go/apperror"
	"github.com/user/kkcos-go/auth"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// EventHandlers provides the HTTP handlers for the /events routes.
type EventHandlers struct {
	service *EventService
}

// NewEventHandlers creates new EventHandlers.
func NewEventHandlers(service *EventService) *EventHandlers {
	return &EventHandlers{service: service}
}

// RegisterRoutes registers the event API routes on the given router. The
// static /ranking and /stats paths are registered alongside the /{eventID}
// parameter route; chi resolves static segments first.
func (h *EventHandlers) RegisterRoutes(router chi.Router) {
	router.Post("/", h.createEvent)
	router.Get("/", h.listEvents)
	router.Get("/ranking", h.getRanking)
	router.Get("/stats", h.getStats)
	router.Get("/{eventID}", h.getEvent)
	router.Delete("/{eventID}", h.deleteEvent)
}

// createEvent godoc
// @Summary Log an event
// @Description Creates a new habit event. A missing timestamp defaults to the current UTC time; naive timestamps are treated as UTC.
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventBody body events.CreateEventRequest true "Event to create"
// @Success 201 {object} events.Event "Event created"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid timestamp or consistency"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Referenced user does not exist"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /events/ [post]
func (h *EventHandlers) createEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	if req.UserID == 0 {
		auth.WriteError(w, r, apperror.NewBadRequestError("user_id is required", nil))
		return
	}

	event, err := h.service.CreateEvent(r.Context(), req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// listEvents godoc
// @Summary List events
// @Description Returns a page of events ordered by id.
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param offset query int false "Number of events to skip" default(0)
// @Param limit query int false "Maximum number of events to return" default(100)
// @Success 200 {array} events.Event
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Malformed pagination parameters"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /events/ [get]
func (h *EventHandlers) listEvents(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid offset parameter", err))
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid limit parameter", err))
		return
	}
	if offset < 0 || limit < 0 {
		auth.WriteError(w, r, apperror.NewBadRequestError("offset and limit must be non-negative", nil))
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	events, err := h.service.ListEvents(r.Context(), offset, limit)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// getRanking godoc
// @Summary User ranking
// @Description Returns the leaderboard: every user with at least one event, with their event count, sorted by count descending. Ties resolve to the lower user id.
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Success 200 {array} events.RankingEntry
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /events/ranking [get]
func (h *EventHandlers) getRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.service.Ranking(r.Context())
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ranking)
}

// getStats godoc
// @Summary Hall of fame and averages
// @Description Returns the hall-of-fame superlatives and each user's mean events per calendar day since their first event.
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} events.StatsResponse
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /events/stats [get]
func (h *EventHandlers) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// getEvent godoc
// @Summary Get an event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event id"
// @Success 200 {object} events.Event
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Malformed id"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Unknown event id"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /events/{eventID} [get]
func (h *EventHandlers) getEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid event id", err))
		return
	}

	event, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// deleteEvent godoc
// @Summary Delete an event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event id"
// @Success 200 {object} events.DeleteResponse
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Malformed id"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Unknown event id"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /events/{eventID} [delete]
func (h *EventHandlers) deleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid event id", err))
		return
	}

	if err := h.service.DeleteEvent(r.Context(), eventID); err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteResponse{OK: true})
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}

// writeJSON serializes data to JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}
