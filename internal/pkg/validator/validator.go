package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar date format accepted in request bodies.
const DateLayout = "2006-01-02"

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failed field of a request so clients can
// render all problems at once.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap keeps the first message reported for each field.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, err := range v {
		if _, exists := result[err.Field]; !exists {
			result[err.Field] = err.Message
		}
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	if !emailRegex.MatchString(email) {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ExceedsLength counts characters, not bytes, so accented names are not penalised.
func ExceedsLength(s string, max int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > max
}

func IsInRange(v, min, max int) bool {
	return v >= min && v <= max
}

func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse(DateLayout, dateStr)
	return date, err == nil
}
