package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ehime-live/live-schedule/app/auth"
	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/event"
	"github.com/ehime-live/live-schedule/app/venue"
)

func (h *Handler) APIListEvents(c *gin.Context) {
	f, err := event.ParseFilter(c.Request.URL.Query())
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}

	events, err := h.listEvents(c.Request.Context(), f)
	if err != nil {
		slog.Error("Database error", "operation", "list_events", "error", err)
		writeError(c, http.StatusInternalServerError, codeInternalError, "Database error")
		return
	}

	c.JSON(http.StatusOK, eventListResponse{
		Events: events,
		Total:  len(events),
	})
}

func (h *Handler) APIEventOptions(c *gin.Context) {
	f, err := event.ParseFilter(c.Request.URL.Query())
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}

	opts, err := h.filterOptions(c.Request.Context(), f)
	if err != nil {
		slog.Error("Database error", "operation", "get_date_range", "error", err)
		writeError(c, http.StatusInternalServerError, codeInternalError, "Database error")
		return
	}

	c.JSON(http.StatusOK, opts)
}

func (h *Handler) APIGetEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		writeError(c, http.StatusBadRequest, codeInvalidID, "Invalid event id")
		return
	}

	e, err := h.loadEvent(c.Request.Context(), id)
	if err != nil {
		h.writeLookupError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, e)
}

func (h *Handler) APICreateEvent(c *gin.Context) {
	var form event.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, "Invalid request body")
		return
	}

	if fieldErrors := form.Validate(); fieldErrors != nil {
		writeValidationError(c, http.StatusBadRequest, "Validation failed", fieldErrors)
		return
	}

	ctx := c.Request.Context()
	created, err := h.eventRepo.CreateEvent(ctx, form.Fields())
	if err != nil {
		slog.Error("Database error", "operation", "create_event", "error", err)
		writeError(c, http.StatusInternalServerError, codeInternalError, "Failed to create event")
		return
	}

	slog.Info("Event created", "id", created.ID, "venue", created.Venue, "user", auth.CurrentUser(c).Name)
	h.eventsChanged(ctx)

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) APIUpdateEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		writeError(c, http.StatusBadRequest, codeInvalidID, "Invalid event id")
		return
	}

	var form event.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, "Invalid request body")
		return
	}

	if fieldErrors := form.Validate(); fieldErrors != nil {
		writeValidationError(c, http.StatusBadRequest, "Validation failed", fieldErrors)
		return
	}

	ctx := c.Request.Context()
	updated, err := h.eventRepo.UpdateEvent(ctx, id, form.Fields())
	if err != nil {
		h.writeLookupError(c, id, err)
		return
	}

	slog.Info("Event updated", "id", id, "user", auth.CurrentUser(c).Name)
	h.eventsChanged(ctx)

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) APIDeleteEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		writeError(c, http.StatusBadRequest, codeInvalidID, "Invalid event id")
		return
	}

	ctx := c.Request.Context()
	if err := h.eventRepo.DeleteEvent(ctx, id); err != nil {
		h.writeLookupError(c, id, err)
		return
	}

	slog.Info("Event deleted", "id", id, "user", auth.CurrentUser(c).Name)
	h.eventsChanged(ctx)

	c.Status(http.StatusNoContent)
}

func (h *Handler) APIHistory(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, codeInvalidFilter, "Invalid limit")
			return
		}
		limit = n
	}

	events, err := h.eventRepo.GetHistory(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_history", "error", err)
		writeError(c, http.StatusInternalServerError, codeInternalError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": event.GroupHistory(events),
	})
}

func (h *Handler) APIDataSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sources":           venue.DataSources(),
		"common_processing": venue.CommonProcessing,
		"extraction_rules":  venue.ExtractionRules(),
	})
}

func (h *Handler) writeLookupError(c *gin.Context, id int64, err error) {
	if errors.Is(err, database.ErrNotFound) {
		writeError(c, http.StatusNotFound, codeNotFound, "Event not found")
		return
	}
	slog.Error("Database error", "event_id", id, "error", err)
	writeError(c, http.StatusInternalServerError, codeInternalError, "Database error")
}
