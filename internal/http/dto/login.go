package dto

import (
	"strings"

	"github.com/cesargomez89/streamhub/internal/domain"
)

type LoginRequest struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Async returns immediately with a run id instead of waiting for the sync.
	Async bool `json:"async"`
}

func (r *LoginRequest) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRequired("url", r.URL)...)
	errs = append(errs, validateURL("url", strings.TrimSpace(r.URL))...)
	errs = append(errs, validateRequired("username", r.Username)...)
	errs = append(errs, validateRequired("password", r.Password)...)
	return errs
}

func (r *LoginRequest) ToProfile() domain.Profile {
	return domain.Profile{
		URL:      strings.TrimSpace(r.URL),
		Username: strings.TrimSpace(r.Username),
		Password: r.Password,
	}
}
