package service

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/mchic/setlist/internal/model"
)

// Rejection messages shown to the user
var (
	MessageTitleRequired  = "Il titolo è obbligatorio."
	MessageAuthorRequired = "L'autore è obbligatorio."
	MessageVoiceRequired  = "Seleziona almeno una voce valida (" + strings.Join(model.AllowedVoices, ", ") + ")."
)

// ValidationError carries the single reason a payload was rejected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func reject(message string) error {
	return &ValidationError{Message: message}
}

// NormalizeSong turns an untrusted decoded JSON object into a canonical
// SongInput, stopping at the first failing field.
func NormalizeSong(raw map[string]any) (model.SongInput, error) {
	title := trimmedString(raw["title"])
	if title == "" {
		return model.SongInput{}, reject(MessageTitleRequired)
	}

	author := trimmedString(raw["author"])
	if author == "" {
		return model.SongInput{}, reject(MessageAuthorRequired)
	}

	voices := NormalizeVoices(raw["voices"])
	if len(voices) == 0 {
		return model.SongInput{}, reject(MessageVoiceRequired)
	}

	return model.SongInput{
		Title:       title,
		Author:      author,
		Voices:      voices,
		Instruments: NormalizeInstruments(raw["instruments"]),
		KeyOffset:   NormalizeKeyOffset(raw["keyOffset"]),
	}, nil
}

// NormalizeVoices keeps allowed voices once each, in input order.
func NormalizeVoices(value any) []model.Voice {
	voices := []model.Voice{}
	for _, item := range listItems(value) {
		clean := strings.ToLower(strings.TrimSpace(item))
		if slices.Contains(model.AllowedVoices, clean) && !slices.Contains(voices, clean) {
			voices = append(voices, clean)
		}
	}
	return voices
}

// NormalizeInstruments keeps allowed instruments in input order, duplicates
// included, and prepends the primary instrument when it is missing.
func NormalizeInstruments(value any) []model.Instrument {
	instruments := []model.Instrument{}
	for _, item := range listItems(value) {
		clean := strings.ToLower(strings.TrimSpace(item))
		if slices.Contains(model.AllowedInstruments, clean) {
			instruments = append(instruments, clean)
		}
	}
	if !slices.Contains(instruments, model.PrimaryInstrument) {
		instruments = append([]model.Instrument{model.PrimaryInstrument}, instruments...)
	}
	return instruments
}

// NormalizeKeyOffset coerces value to a finite number of semitones, 0 otherwise.
func NormalizeKeyOffset(value any) float64 {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case bool:
		if v {
			n = 1
		}
	case json.Number:
		// ParseFloat reports ±Inf with ErrRange for out-of-range literals
		parsed, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0
		}
		n = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// listItems accepts a JSON array or a comma-separated string. Non-string
// array elements are skipped.
func listItems(value any) []string {
	switch v := value.(type) {
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return items
	case []string:
		return v
	case string:
		return strings.Split(v, ",")
	default:
		return nil
	}
}

func trimmedString(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
