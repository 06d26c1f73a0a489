package models

import "time"

type ReferenceKind string

const (
	ReferenceURL ReferenceKind = "url"
	ReferenceID  ReferenceKind = "id"
)

// Request describes one summarization call.
type Request struct {
	VideoReference string        `json:"video_reference"`
	Kind           ReferenceKind `json:"kind"`
	Percent        int           `json:"percent"`
	Algorithm      Algorithm     `json:"algorithm"`
}

// NewRequest fills in the default percent and algorithm.
func NewRequest(kind ReferenceKind, reference string) Request {
	return Request{
		VideoReference: reference,
		Kind:           kind,
		Percent:        DefaultPercent,
		Algorithm:      DefaultAlgorithm,
	}
}

type Stats struct {
	LengthOriginal   int `json:"length_original"`
	SentenceOriginal int `json:"sentence_original"`
	LengthSummary    int `json:"length_summary"`
	SentenceSummary  int `json:"sentence_summary"`
}

type Result struct {
	VideoID string `json:"video_id"`
	Summary string `json:"summary"`
	Stats   Stats  `json:"stats"`
}

// Record is a stored summary.
type Record struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	Algorithm Algorithm `json:"algorithm"`
	Percent   int       `json:"percent"`
	Summary   string    `json:"summary"`
	Stats     Stats     `json:"stats"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRecord(id string, req Request, result *Result, now time.Time) *Record {
	return &Record{
		ID:        id,
		VideoID:   result.VideoID,
		Algorithm: req.Algorithm,
		Percent:   req.Percent,
		Summary:   result.Summary,
		Stats:     result.Stats,
		CreatedAt: now,
	}
}
