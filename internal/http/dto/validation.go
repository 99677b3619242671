package dto

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cesargomez89/streamhub/internal/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) ToMap() map[string]string {
	return map[string]string{e.Field: e.Message}
}

func ToMap(errs []ValidationError) map[string]string {
	result := make(map[string]string)
	for _, e := range errs {
		result[e.Field] = e.Message
	}
	return result
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func validateRequired(field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return []ValidationError{{Field: field, Message: "is required"}}
	}
	return nil
}

func validateURL(field, urlVal string) []ValidationError {
	var errs []ValidationError
	if urlVal != "" {
		u, err := url.ParseRequestURI(urlVal)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{Field: field, Message: "invalid URL format"})
		}
	}
	return errs
}

// ParseKind validates a content kind query value.
func ParseKind(field, value string) (domain.Kind, []ValidationError) {
	if value == "" {
		return "", []ValidationError{{Field: field, Message: "is required"}}
	}
	kind, err := domain.ParseKind(value)
	if err != nil {
		return "", []ValidationError{{Field: field, Message: "must be one of live, movie, series"}}
	}
	return kind, nil
}
