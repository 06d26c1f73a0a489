package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Response is the envelope of every gateway response.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Kind      string      `json:"kind,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WriteJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	writeResponse(w, statusCode, Response{
		Success:   true,
		Data:      data,
		RequestID: RequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

// HandleError writes an error envelope. kind may be empty.
func HandleError(w http.ResponseWriter, r *http.Request, message, kind string, statusCode int) {
	writeResponse(w, statusCode, Response{
		Success:   false,
		Error:     message,
		Kind:      kind,
		RequestID: RequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

func writeResponse(w http.ResponseWriter, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}

// FormatText puts every sentence of text on its own line.
func FormatText(text string) string {
	var builder strings.Builder
	lineStart := true
	for _, word := range strings.Fields(text) {
		if !lineStart {
			builder.WriteRune(' ')
		}
		builder.WriteString(word)
		lineStart = strings.ContainsAny(word[len(word)-1:], ".!?")
		if lineStart {
			builder.WriteRune('\n')
		}
	}
	return strings.TrimRight(builder.String(), "\n")
}
