package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

// ErrInvalidResult indicates a malformed classifier result. Every
// validation failure wraps it so callers can match with errors.Is.
var ErrInvalidResult = errors.New("invalid prediction result")

// ScoreSumTolerance is the allowed deviation of a score vector from 1.
const ScoreSumTolerance = 1e-3

// MaxTextLength is the stored prefix of the source text; longer inputs
// are truncated before logging.
const MaxTextLength = 200

// ValidateResult checks a classifier result for shape errors: unknown
// label, confidence out of [0,1], missing or non-normalized scores.
func ValidateResult(result models.ClassifierResult) error {
	if !result.Sentiment.Valid() {
		return fmt.Errorf("%w: unknown label %q", ErrInvalidResult, result.Sentiment)
	}

	if result.Confidence < 0 || result.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.4f out of range [0,1]", ErrInvalidResult, result.Confidence)
	}

	for _, label := range models.AllLabels() {
		score, ok := result.Scores[label]
		if !ok {
			return fmt.Errorf("%w: missing score for label %q", ErrInvalidResult, label)
		}
		if score < 0 || score > 1 {
			return fmt.Errorf("%w: score %.4f for label %q out of range [0,1]", ErrInvalidResult, score, label)
		}
	}

	if sum := result.Scores.Sum(); math.Abs(sum-1) > ScoreSumTolerance {
		return fmt.Errorf("%w: scores sum to %.4f, expected 1", ErrInvalidResult, sum)
	}

	return nil
}

// ValidateBaseline checks that a reference distribution covers all labels
// and sums to 1 within tolerance.
func ValidateBaseline(baseline models.Baseline) error {
	for _, label := range models.AllLabels() {
		share, ok := baseline.Distribution[label]
		if !ok {
			return fmt.Errorf("baseline missing label %q", label)
		}
		if share < 0 || share > 1 {
			return fmt.Errorf("baseline share %.4f for label %q out of range [0,1]", share, label)
		}
	}

	if sum := baseline.Distribution.Sum(); math.Abs(sum-1) > ScoreSumTolerance {
		return fmt.Errorf("baseline distribution sums to %.4f, expected 1", sum)
	}

	if baseline.MeanConfidence < 0 || baseline.MeanConfidence > 1 {
		return fmt.Errorf("baseline mean confidence %.4f out of range [0,1]", baseline.MeanConfidence)
	}

	return nil
}

// SanitizeText trims whitespace, strips control characters and truncates
// to MaxTextLength before the text enters the observation window.
func SanitizeText(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	text := builder.String()
	if len(text) > MaxTextLength {
		runes := []rune(text)
		if len(runes) > MaxTextLength {
			text = string(runes[:MaxTextLength])
		}
	}
	return text
}
