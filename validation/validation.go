package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nijaru/yt-sum/errors"
	"github.com/nijaru/yt-sum/models"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// videoIDPattern matches "v=" or "/" followed by exactly eleven id characters.
var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11}).*`)

// ExtractVideoID returns the first video id found in rawURL.
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// WatchURL builds the canonical watch URL for a bare id.
func WatchURL(videoID string) string {
	return watchURLPrefix + videoID
}

func VideoIDFromURL(rawURL string) (string, error) {
	const op = "validation.VideoIDFromURL"

	id, ok := ExtractVideoID(rawURL)
	if !ok {
		return "", errors.InvalidVideoURL(op, nil,
			fmt.Sprintf("YouTube video URL %q is invalid", rawURL))
	}
	return id, nil
}

// VideoIDFromID runs a bare id through the same pattern as a URL by wrapping
// it in a watch URL first, so malformed ids fail the same way. The pattern
// tolerates trailing characters, so the match must also be the whole id.
func VideoIDFromID(videoID string) (string, error) {
	const op = "validation.VideoIDFromID"

	id, ok := ExtractVideoID(WatchURL(videoID))
	if !ok || id != videoID {
		return "", errors.InvalidVideoID(op, nil,
			fmt.Sprintf("YouTube video ID %q is invalid", videoID))
	}
	return id, nil
}

func ValidateAlgorithm(a models.Algorithm) error {
	const op = "validation.ValidateAlgorithm"

	if !a.Valid() {
		return errors.InvalidArgument(op, nil,
			fmt.Sprintf("algorithm choice %q is not supported, accepted values are %s",
				string(a), models.AlgorithmNames()))
	}
	return nil
}

// ParseAlgorithm validates user input such as a flag or query parameter.
// Surrounding whitespace is ignored; an empty string selects the default.
func ParseAlgorithm(s string) (models.Algorithm, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.DefaultAlgorithm, nil
	}
	a := models.Algorithm(s)
	if err := ValidateAlgorithm(a); err != nil {
		return "", err
	}
	return a, nil
}
