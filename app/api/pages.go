package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ehime-live/live-schedule/app/auth"
	"github.com/ehime-live/live-schedule/app/cfg"
	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/event"
	"github.com/ehime-live/live-schedule/app/venue"
)

type sortLink struct {
	URL       string
	Active    bool
	Ascending bool
}

type carousel struct {
	Images  []string
	Index   int
	Current string
	PrevURL string
	NextURL string
}

// render executes a page template with the data every page shares.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = auth.CurrentUser(c)
	data["Version"] = cfg.GetVersion()
	data["Path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

func (h *Handler) renderError(c *gin.Context, status int, message string) {
	h.render(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
	c.Abort()
}

func (h *Handler) renderLookupError(c *gin.Context, id int64, err error) {
	if errors.Is(err, database.ErrNotFound) {
		h.renderError(c, http.StatusNotFound, "イベントが見つかりません")
		return
	}
	slog.Error("Database error", "event_id", id, "error", err)
	h.renderError(c, http.StatusInternalServerError, "データベースエラー")
}

func sortLinkFor(f event.Filter, field database.SortField) sortLink {
	return sortLink{
		URL:       "/?" + f.ToggleSort(field).Values().Encode(),
		Active:    f.SortField == field,
		Ascending: f.Ascending,
	}
}

func (h *Handler) IndexPage(c *gin.Context) {
	ctx := c.Request.Context()

	f, err := event.ParseFilter(c.Request.URL.Query())
	if err != nil {
		h.renderError(c, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.listEvents(ctx, f)
	if err != nil {
		slog.Error("Database error", "operation", "list_events", "error", err)
		h.renderError(c, http.StatusInternalServerError, "データベースエラー")
		return
	}

	opts, err := h.filterOptions(ctx, f)
	if err != nil {
		slog.Error("Database error", "operation", "get_date_range", "error", err)
		h.renderError(c, http.StatusInternalServerError, "データベースエラー")
		return
	}

	query := f.Values().Encode()
	h.render(c, http.StatusOK, "index.html", gin.H{
		"Title":     "ライブスケジュール",
		"Filter":    f,
		"Options":   opts,
		"Events":    events,
		"DateSort":  sortLinkFor(f, database.SortByDate),
		"VenueSort": sortLinkFor(f, database.SortByVenue),
		"Query":     query,
	})
}

func (h *Handler) EventPage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.renderError(c, http.StatusBadRequest, "不正なIDです")
		return
	}

	e, err := h.loadEvent(c.Request.Context(), id)
	if err != nil {
		h.renderLookupError(c, id, err)
		return
	}

	index, _ := strconv.Atoi(c.Query("image"))

	h.render(c, http.StatusOK, "event.html", gin.H{
		"Title":    event.DisplayTitle(e.Title),
		"Event":    e,
		"Area":     areaLabel(e.Venue),
		"Carousel": newCarousel(e, index),
	})
}

func newCarousel(e *database.Event, index int) carousel {
	images := event.ImageURLs(e.ImageURL)
	if len(images) == 0 {
		return carousel{}
	}

	index = event.ClampImage(index, len(images))
	base := fmt.Sprintf("/events/%d?image=", e.ID)

	return carousel{
		Images:  images,
		Index:   index,
		Current: images[index],
		PrevURL: base + strconv.Itoa(event.PrevImage(index, len(images))),
		NextURL: base + strconv.Itoa(event.NextImage(index, len(images))),
	}
}

func areaLabel(venueName string) string {
	area, ok := venue.AreaOf(venueName)
	if !ok {
		return ""
	}
	return string(area)
}

func (h *Handler) renderForm(c *gin.Context, status int, form event.Form, fieldErrors event.FieldErrors, id int64) {
	venues := venue.AllVenues()
	if form.Venue != "" && !slices.Contains(venues, form.Venue) {
		venues = append(venues, form.Venue)
	}

	title := "イベント登録"
	action := "/events"
	cancel := "/"
	if id > 0 {
		title = "イベント編集"
		action = fmt.Sprintf("/events/%d", id)
		cancel = action
	}

	h.render(c, status, "form.html", gin.H{
		"Title":  title,
		"Form":   form,
		"Errors": fieldErrors,
		"Venues": venues,
		"Action": action,
		"Cancel": cancel,
		"ID":     id,
	})
}

func (h *Handler) NewEventPage(c *gin.Context) {
	h.renderForm(c, http.StatusOK, event.NewForm(h.now()), nil, 0)
}

func (h *Handler) EditEventPage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.renderError(c, http.StatusBadRequest, "不正なIDです")
		return
	}

	e, err := h.loadEvent(c.Request.Context(), id)
	if err != nil {
		h.renderLookupError(c, id, err)
		return
	}

	h.renderForm(c, http.StatusOK, event.FormFromEvent(e), nil, id)
}

func (h *Handler) CreateEventSubmit(c *gin.Context) {
	var form event.Form
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, http.StatusBadRequest, "不正なリクエストです")
		return
	}

	if fieldErrors := form.Validate(); fieldErrors != nil {
		h.renderForm(c, http.StatusBadRequest, form, fieldErrors, 0)
		return
	}

	ctx := c.Request.Context()
	created, err := h.eventRepo.CreateEvent(ctx, form.Fields())
	if err != nil {
		slog.Error("Database error", "operation", "create_event", "error", err)
		h.renderError(c, http.StatusInternalServerError, "イベントを登録できませんでした")
		return
	}

	slog.Info("Event created", "id", created.ID, "venue", created.Venue, "user", auth.CurrentUser(c).Name)
	h.eventsChanged(ctx)

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/events/%d", created.ID))
}

func (h *Handler) UpdateEventSubmit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.renderError(c, http.StatusBadRequest, "不正なIDです")
		return
	}

	var form event.Form
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, http.StatusBadRequest, "不正なリクエストです")
		return
	}

	if fieldErrors := form.Validate(); fieldErrors != nil {
		h.renderForm(c, http.StatusBadRequest, form, fieldErrors, id)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.eventRepo.UpdateEvent(ctx, id, form.Fields()); err != nil {
		h.renderLookupError(c, id, err)
		return
	}

	slog.Info("Event updated", "id", id, "user", auth.CurrentUser(c).Name)
	h.eventsChanged(ctx)

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/events/%d", id))
}

func (h *Handler) DeleteEventSubmit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.renderError(c, http.StatusBadRequest, "不正なIDです")
		return
	}

	ctx := c.Request.Context()
	if err := h.eventRepo.DeleteEvent(ctx, id); err != nil {
		h.renderLookupError(c, id, err)
		return
	}

	slog.Info("Event deleted", "id", id, "user", auth.CurrentUser(c).Name)
	h.eventsChanged(ctx)

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) HistoryPage(c *gin.Context) {
	events, err := h.eventRepo.GetHistory(c.Request.Context(), 0)
	if err != nil {
		slog.Error("Database error", "operation", "get_history", "error", err)
		h.renderError(c, http.StatusInternalServerError, "データベースエラー")
		return
	}

	h.render(c, http.StatusOK, "history.html", gin.H{
		"Title":  "更新履歴",
		"Groups": event.GroupHistory(events),
	})
}

func (h *Handler) InfoPage(c *gin.Context) {
	h.render(c, http.StatusOK, "info.html", gin.H{
		"Title":            "データ取得元",
		"Sources":          venue.DataSources(),
		"CommonProcessing": venue.CommonProcessing,
		"ExtractionRules":  venue.ExtractionRules(),
	})
}

func (h *Handler) NotFoundPage(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		writeError(c, http.StatusNotFound, codeNotFound, "Not found")
		return
	}
	h.renderError(c, http.StatusNotFound, "ページが見つかりません")
}
