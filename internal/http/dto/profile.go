package dto

import (
	"github.com/goccy/go-json"

	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/xtream"
)

// ProfileResponse exposes the stored account without credentials. The raw
// get_profile body is not returned because its user_info echoes the password.
type ProfileResponse struct {
	URL            string `json:"url"`
	Username       string `json:"username"`
	Status         string `json:"status,omitempty"`
	ExpDate        string `json:"exp_date,omitempty"`
	MaxConnections string `json:"max_connections,omitempty"`
	ServerURL      string `json:"server_url,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
}

func NewProfileResponse(p *domain.Profile) ProfileResponse {
	resp := ProfileResponse{URL: p.URL, Username: p.Username}

	var acct xtream.Account
	if len(p.ServerInfo) == 0 || json.Unmarshal(p.ServerInfo, &acct) != nil {
		return resp
	}
	resp.Status = string(acct.UserInfo.Status)
	resp.ExpDate = string(acct.UserInfo.ExpDate)
	resp.MaxConnections = string(acct.UserInfo.MaxConnections)
	resp.ServerURL = string(acct.ServerInfo.URL)
	resp.Timezone = string(acct.ServerInfo.Timezone)
	return resp
}
