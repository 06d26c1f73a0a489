// Package summarizer is a client for the remote YouTube transcript
// summarization service.
//
// The client validates its input, resolves the video id and performs exactly
// one GET request per call. It never retries and keeps no state between calls,
// so a single Client may be shared between goroutines.
package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nijaru/yt-sum/errors"
	"github.com/nijaru/yt-sum/models"
	"github.com/nijaru/yt-sum/validation"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://ytsum.herokuapp.com"
	summarizePath  = "/summarize/"

	// Error bodies are only kept for diagnostics.
	maxErrorBody = 512
	// Summaries are a fraction of a transcript; anything larger is not a
	// summarization response.
	maxResponseBody = 8 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
	debug      bool
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces http.DefaultClient. The client's own timeout, if
// any, is the only timeout applied to requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug turns request diagnostics on or off. It has no effect on results.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption adjusts a single call.
type RequestOption func(*models.Request)

// WithPercent sets the target summary size as a percentage of the transcript.
// The value is passed to the service unchanged.
func WithPercent(percent int) RequestOption {
	return func(r *models.Request) {
		r.Percent = percent
	}
}

func WithAlgorithm(a models.Algorithm) RequestOption {
	return func(r *models.Request) {
		r.Algorithm = a
	}
}

// SummarizeByURL summarizes the video referenced by a YouTube URL.
func (c *Client) SummarizeByURL(ctx context.Context, videoURL string, opts ...RequestOption) (*models.Result, error) {
	return c.Summarize(ctx, buildRequest(models.ReferenceURL, videoURL, opts))
}

// SummarizeByID summarizes the video with the given 11 character id.
func (c *Client) SummarizeByID(ctx context.Context, videoID string, opts ...RequestOption) (*models.Result, error) {
	return c.Summarize(ctx, buildRequest(models.ReferenceID, videoID, opts))
}

// Summarize runs a fully specified request.
func (c *Client) Summarize(ctx context.Context, req models.Request) (*models.Result, error) {
	const op = "Client.Summarize"

	if err := validation.ValidateAlgorithm(req.Algorithm); err != nil {
		return nil, err
	}

	logger := c.logger.WithFields(logrus.Fields{
		"reference": req.VideoReference,
		"kind":      req.Kind,
		"percent":   req.Percent,
		"algorithm": req.Algorithm,
	})
	c.debugf(logger, "Summarization requested (%s)", req.Algorithm.Description())

	videoID, err := resolveVideoID(req)
	if err != nil {
		c.debugf(logger.WithError(err), "Improper summarization request")
		return nil, err
	}
	logger = logger.WithField("video_id", videoID)

	endpoint := c.endpoint(videoID, req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Internal(op, err, "failed to build summarization request")
	}
	httpReq.Header.Set("Accept", "application/json")

	c.debugf(logger.WithField("endpoint", endpoint), "Making summarization request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.debugf(logger.WithError(err), "Summarization request failed")
		return nil, errors.Connection(op, err, "a connection error occurred while making the summarization request")
	}
	defer resp.Body.Close()

	result, err := decodeResponse(resp)
	if err != nil {
		c.debugf(logger.WithError(err), "Summarization failed")
		return nil, err
	}
	result.VideoID = videoID

	c.debugf(logger.WithFields(logrus.Fields{
		"length_original": result.Stats.LengthOriginal,
		"length_summary":  result.Stats.LengthSummary,
	}), "Summarization succeeded")

	return result, nil
}

func buildRequest(kind models.ReferenceKind, reference string, opts []RequestOption) models.Request {
	req := models.NewRequest(kind, reference)
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

func resolveVideoID(req models.Request) (string, error) {
	if req.Kind == models.ReferenceID {
		return validation.VideoIDFromID(req.VideoReference)
	}
	return validation.VideoIDFromURL(req.VideoReference)
}

func (c *Client) endpoint(videoID string, req models.Request) string {
	q := url.Values{}
	q.Set("id", videoID)
	q.Set("percent", strconv.Itoa(req.Percent))
	q.Set("choice", req.Algorithm.Code())
	return c.baseURL + summarizePath + "?" + q.Encode()
}

func (c *Client) debugf(entry *logrus.Entry, format string, args ...interface{}) {
	if !c.debug {
		return
	}
	entry.Infof(format, args...)
}

// serviceResponse is the service's JSON envelope.
type serviceResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Response *serviceSummary `json:"response,omitempty"`
}

type serviceSummary struct {
	ProcessedSummary string      `json:"processed_summary"`
	LengthOriginal   json.Number `json:"length_original"`
	SentenceOriginal json.Number `json:"sentence_original"`
	LengthSummary    json.Number `json:"length_summary"`
	SentenceSummary  json.Number `json:"sentence_summary"`
}

func decodeResponse(resp *http.Response) (*models.Result, error) {
	const op = "summarizer.decodeResponse"

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, errors.Connection(op, err, "failed to read summarization response")
	}
	if len(body) > maxResponseBody {
		return nil, errors.BadResponse(op,
			pkgerrors.Errorf("status %d, body larger than %d bytes", resp.StatusCode, maxResponseBody),
			"summarization service returned an oversized response")
	}

	var envelope serviceResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.BadResponse(op,
			pkgerrors.Wrapf(err, "status %d, body %q", resp.StatusCode, truncate(body, maxErrorBody)),
			"summarization service returned a malformed response")
	}

	if !envelope.Success {
		message := strings.TrimSpace(envelope.Message)
		if message == "" {
			message = fmt.Sprintf("summarization service reported a failure (status %d)", resp.StatusCode)
		}
		return nil, errors.SummarizationFailure(op, message)
	}

	if envelope.Response == nil {
		return nil, errors.BadResponse(op, nil, "summarization service reported success without a summary")
	}

	stats, err := envelope.Response.stats()
	if err != nil {
		return nil, errors.BadResponse(op, err, "summarization service returned invalid statistics")
	}

	return &models.Result{
		Summary: envelope.Response.ProcessedSummary,
		Stats:   stats,
	}, nil
}

// The service has sent counts both as numbers and as numeric strings, and
// whole numbers may carry a fraction part. Every count must be present.
func (s *serviceSummary) stats() (models.Stats, error) {
	var stats models.Stats
	fields := []struct {
		name  string
		value json.Number
		dst   *int
	}{
		{"length_original", s.LengthOriginal, &stats.LengthOriginal},
		{"sentence_original", s.SentenceOriginal, &stats.SentenceOriginal},
		{"length_summary", s.LengthSummary, &stats.LengthSummary},
		{"sentence_summary", s.SentenceSummary, &stats.SentenceSummary},
	}
	for _, f := range fields {
		n, err := parseCount(f.value)
		if err != nil {
			return models.Stats{}, pkgerrors.Wrapf(err, "parse %s", f.name)
		}
		*f.dst = n
	}
	return stats, nil
}

func parseCount(v json.Number) (int, error) {
	if v == "" {
		return 0, pkgerrors.New("count is missing")
	}
	if n, err := v.Int64(); err == nil {
		return int(n), nil
	}
	f, err := v.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, pkgerrors.Errorf("count %s is not a whole number", v)
	}
	return int(f), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
