package transport

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type eventRequest struct {
	EventType   string                 `json:"event_type" validate:"required"`
	UserID      string                 `json:"user_id"`
	GuestID     string                 `json:"guest_id"`
	SessionID   string                 `json:"session_id"`
	UserDisplay string                 `json:"user_display"`
	URL         string                 `json:"url"`
	Path        string                 `json:"path"`
	Element     string                 `json:"element"`
	Data        map[string]interface{} `json:"data"`
	Meta        map[string]interface{} `json:"meta"`
	DurationMS  *int64                 `json:"duration_ms" validate:"omitempty,gte=0"`
}

type activityResponse struct {
	ID          string                 `json:"_id"`
	UserID      string                 `json:"user_id,omitempty"`
	GuestID     string                 `json:"guest_id,omitempty"`
	UserDisplay string                 `json:"user_display,omitempty"`
	SessionID   string                 `json:"session_id,omitempty"`
	EventType   string                 `json:"event_type"`
	URL         string                 `json:"url,omitempty"`
	Element     string                 `json:"element,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
	DurationMS  *int64                 `json:"duration_ms,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

func toActivityResponse(a *model.Activity) activityResponse {
	return activityResponse{
		ID:          a.ID.Hex(),
		UserID:      optionalHex(a.UserID),
		GuestID:     a.GuestID,
		UserDisplay: a.UserDisplay,
		SessionID:   a.SessionID,
		EventType:   a.EventType,
		URL:         a.URL,
		Element:     a.Element,
		Data:        a.Data,
		DurationMS:  a.DurationMS,
		Meta:        a.Meta,
		CreatedAt:   a.CreatedAt,
	}
}

type eventCountJSON struct {
	EventType string `json:"_id"`
	Count     int64  `json:"count"`
}

type summaryResponse struct {
	CountsByType         []eventCountJSON `json:"countsByType"`
	UniqueUsers          int64            `json:"uniqueUsers"`
	AvgSessionDurationMS float64          `json:"avgSessionDurationMs"`
	SessionSamples       int64            `json:"sessionSamples"`
}

func (h *Handler) logEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	input := service.EventInput{
		EventType:   req.EventType,
		GuestID:     req.GuestID,
		SessionID:   req.SessionID,
		UserDisplay: req.UserDisplay,
		URL:         firstNonEmpty(req.URL, req.Path, r.Referer()),
		Element:     req.Element,
		Data:        req.Data,
		Meta:        req.Meta,
		DurationMS:  req.DurationMS,
	}
	if req.UserID != "" {
		userID, err := parseObjectID(req.UserID, "user id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		input.UserID = userID
	} else if userID, ok := userIDFrom(r.Context()); ok {
		input.UserID = userID
	}
	activity, err := h.services.Analytics.LogEvent(r.Context(), input, clientFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityResponse(activity))
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := activityFilterFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	activities, err := h.services.Analytics.Events(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result := make([]activityResponse, 0, len(activities))
	for i := range activities {
		result = append(result, toActivityResponse(&activities[i]))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) analyticsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.services.Analytics.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	counts := make([]eventCountJSON, 0, len(summary.CountsByType))
	for _, c := range summary.CountsByType {
		counts = append(counts, eventCountJSON{EventType: c.EventType, Count: c.Count})
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		CountsByType:         counts,
		UniqueUsers:          summary.UniqueUsers,
		AvgSessionDurationMS: summary.AvgSessionDurationMS,
		SessionSamples:       summary.SessionSamples,
	})
}

func (h *Handler) weeklyReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.services.Analytics.Weekly(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) monthlyReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.services.Analytics.Monthly(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// analyticsCart shows the dashboard the live cart of a user or guest.
func (h *Handler) analyticsCart(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var owner model.Owner
	switch {
	case query.Get("user_id") != "":
		userID, err := parseObjectID(query.Get("user_id"), "user id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		owner = model.RegisteredOwner(userID)
	case query.Get("guest_id") != "":
		owner = model.GuestOwner(query.Get("guest_id"))
	default:
		writeError(w, r, model.ErrOwnerRequired)
		return
	}
	lines, err := h.services.Carts.GetCart(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(lines))
}

func activityFilterFrom(r *http.Request) (model.ActivityFilter, error) {
	query := r.URL.Query()
	filter := model.ActivityFilter{
		GuestID:   query.Get("guest_id"),
		EventType: query.Get("event_type"),
	}
	if raw := query.Get("user_id"); raw != "" {
		id, err := parseObjectID(raw, "user id")
		if err != nil {
			return filter, err
		}
		filter.UserID = id
	}
	var err error
	if filter.Start, err = parseTimeParam(query.Get("start"), "start"); err != nil {
		return filter, err
	}
	if filter.End, err = parseTimeParam(query.Get("end"), "end"); err != nil {
		return filter, err
	}
	if filter.Limit, err = parseCountParam(query.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	if filter.Skip, err = parseCountParam(query.Get("skip"), "skip"); err != nil {
		return filter, err
	}
	return filter, nil
}

// parseTimeParam accepts RFC 3339 timestamps or plain dates.
func parseTimeParam(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, model.NewValidationError("invalid %s date", name)
}

func parseCountParam(raw, name string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, model.NewValidationError("%s must be a non-negative integer", name)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
