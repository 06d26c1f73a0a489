package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/nijaru/yt-sum/errors"
	"github.com/nijaru/yt-sum/models"
	"github.com/nijaru/yt-sum/services/summary"
	"github.com/nijaru/yt-sum/utils"
	"github.com/nijaru/yt-sum/validation"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	service summary.Service
	logger  *logrus.Logger
}

func New(service summary.Service, logger *logrus.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes registers the gateway endpoints on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/summary", h.Summary)
	mux.HandleFunc("GET /api/v1/algorithms", h.Algorithms)
	mux.HandleFunc("GET /api/v1/history", h.History)
	mux.HandleFunc("GET /api/v1/archive", h.Archive)
	mux.HandleFunc("GET /health", h.Health)
	return mux
}

// Summary handles GET /api/v1/summary?url=...|id=...&percent=...&choice=...
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	const op = "Handler.Summary"

	req, err := parseSummaryRequest(op, r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.service.Summarize(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	utils.WriteJSON(w, r, http.StatusOK, result)
}

func parseSummaryRequest(op string, r *http.Request) (models.Request, error) {
	q := r.URL.Query()
	videoURL := strings.TrimSpace(q.Get("url"))
	videoID := strings.TrimSpace(q.Get("id"))

	var req models.Request
	switch {
	case videoURL != "" && videoID != "":
		return req, errors.InvalidArgument(op, nil, "provide either url or id, not both")
	case videoURL != "":
		req = models.NewRequest(models.ReferenceURL, videoURL)
	case videoID != "":
		req = models.NewRequest(models.ReferenceID, videoID)
	default:
		return req, errors.InvalidArgument(op, nil, "url or id is required")
	}

	if raw := q.Get("percent"); raw != "" {
		percent, err := strconv.Atoi(raw)
		if err != nil {
			return req, errors.InvalidArgument(op, err, "percent must be an integer")
		}
		req.Percent = percent
	}

	algorithm, err := validation.ParseAlgorithm(q.Get("choice"))
	if err != nil {
		return req, err
	}
	req.Algorithm = algorithm

	return req, nil
}

func (h *Handler) Algorithms(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, r, http.StatusOK, h.service.Algorithms())
}

// History handles GET /api/v1/history?video_id=...&limit=...
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	const op = "Handler.History"

	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondError(w, r, errors.InvalidArgument(op, err, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := h.service.History(r.Context(), strings.TrimSpace(q.Get("video_id")), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	utils.WriteJSON(w, r, http.StatusOK, records)
}

// Archive handles GET /api/v1/archive?video_id=...&choice=...
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	const op = "Handler.Archive"

	q := r.URL.Query()
	videoID := strings.TrimSpace(q.Get("video_id"))
	if videoID == "" {
		h.respondError(w, r, errors.InvalidArgument(op, nil, "video_id is required"))
		return
	}
	algorithm, err := validation.ParseAlgorithm(q.Get("choice"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	record, err := h.service.Archived(r.Context(), videoID, algorithm)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	utils.WriteJSON(w, r, http.StatusOK, record)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.CodeOf(err)
	kind := errors.KindOf(err)
	kindName := kind.String()

	message := "Internal server error"
	var appErr *errors.AppError
	if errors.As(err, &appErr) && kind != errors.KindInternal {
		message = appErr.Message
	}

	// The request ran out of time before the upstream answered.
	if errors.IsDeadlineExceeded(err) {
		code = http.StatusGatewayTimeout
		kindName = "timeout"
		message = "request timed out"
	}

	entry := h.logger.WithFields(logrus.Fields{
		"error":      err,
		"kind":       kindName,
		"status":     code,
		"request_id": utils.RequestID(r.Context()),
		"path":       r.URL.Path,
		"method":     r.Method,
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request error")
	} else {
		entry.Warn("Request error")
	}

	utils.HandleError(w, r, message, kindName, code)
}
