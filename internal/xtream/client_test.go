package xtream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cesargomez89/streamhub/internal/domain"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL+"/", "user", "p&ss")
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://example.com/", "u", "p")
	if c.BaseURL() != "http://example.com" {
		t.Errorf("Expected trailing slash trimmed, got %s", c.BaseURL())
	}
}

func TestBuildURL_EscapesQuery(t *testing.T) {
	c := NewClient("http://example.com", "us er", "p&ss")
	got := c.buildURL("get_live_streams", categoryParams("5"))
	if !strings.HasPrefix(got, "http://example.com/player_api.php?") {
		t.Fatalf("Unexpected URL prefix: %s", got)
	}
	for _, want := range []string{"username=us+er", "password=p%26ss", "action=get_live_streams", "category_id=5"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %s", want, got)
		}
	}
}

func TestGetProfile(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/player_api.php" {
			t.Errorf("Expected /player_api.php, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("action") != "get_profile" || q.Get("username") != "user" || q.Get("password") != "p&ss" {
			t.Errorf("Unexpected query: %v", q)
		}
		w.Write([]byte(`{"user_info":{"username":"user","auth":1,"status":"Active"},"server_info":{"url":"example.com","port":"80"}}`))
	})

	acct, err := c.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if acct.UserInfo.Auth != "1" {
		t.Errorf("Expected auth 1, got %s", acct.UserInfo.Auth)
	}
	if acct.ServerInfo.Port != "80" {
		t.Errorf("Expected port 80, got %s", acct.ServerInfo.Port)
	}
	if !strings.Contains(string(acct.Raw), `"server_info"`) {
		t.Errorf("Expected raw body preserved, got %s", acct.Raw)
	}
}

func TestGetProfile_Unauthorized(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetProfile(context.Background())
	var authErr *domain.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthenticationError, got %v", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", authErr.StatusCode)
	}
}

func TestGetProfile_AuthZero(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user_info":{"auth":0}}`))
	})

	_, err := c.GetProfile(context.Background())
	var authErr *domain.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthenticationError, got %v", err)
	}
}

func TestGetCategories(t *testing.T) {
	tests := []struct {
		kind   domain.Kind
		action string
	}{
		{domain.KindLive, "get_live_categories"},
		{domain.KindMovie, "get_vod_categories"},
		{domain.KindSeries, "get_series_categories"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("action"); got != tt.action {
					t.Errorf("Expected action %s, got %s", tt.action, got)
				}
				w.Write([]byte(`[{"category_id":"1","category_name":"News","parent_id":0},{"category_id":2,"category_name":"Sports"}]`))
			})

			cats, err := c.GetCategories(context.Background(), tt.kind)
			if err != nil {
				t.Fatalf("GetCategories failed: %v", err)
			}
			if len(cats) != 2 {
				t.Fatalf("Expected 2 categories, got %d", len(cats))
			}
			if cats[1].CategoryID != "2" {
				t.Errorf("Expected numeric id decoded as \"2\", got %q", cats[1].CategoryID)
			}
			if cats[0].ParentID != "0" || cats[1].ParentID != "" {
				t.Errorf("Unexpected parent ids: %q %q", cats[0].ParentID, cats[1].ParentID)
			}
		})
	}
}

func TestGetItems_Dispatch(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "get_live_streams":
			w.Write([]byte(`[{"stream_id":101,"name":"One","category_id":"1","stream_icon":"http://x/1.png","epg_channel_id":null}]`))
		case "get_vod_streams":
			w.Write([]byte(`[{"stream_id":"201","name":"Film","category_id":"2","rating":"7.5","added":"1700000000"}]`))
		case "get_series":
			w.Write([]byte(`[{"series_id":301,"name":"Show","category_id":"3","cover":"c.jpg","rating":8,"plot":"p"}]`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	ctx := context.Background()

	live, err := c.GetItems(ctx, domain.KindLive, "")
	if err != nil || live.Len() != 1 || live.Live[0].StreamID != "101" {
		t.Errorf("Unexpected live items: %+v, err %v", live, err)
	}
	if live.Live[0].EPGChannelID != "" {
		t.Errorf("Expected null epg id to decode empty, got %q", live.Live[0].EPGChannelID)
	}

	movies, err := c.GetItems(ctx, domain.KindMovie, "")
	if err != nil || movies.Len() != 1 || movies.Movies[0].Rating != "7.5" {
		t.Errorf("Unexpected movie items: %+v, err %v", movies, err)
	}

	series, err := c.GetItems(ctx, domain.KindSeries, "")
	if err != nil || series.Len() != 1 || series.Series[0].SeriesID != "301" || series.Series[0].Rating != "8" {
		t.Errorf("Unexpected series items: %+v, err %v", series, err)
	}

	if _, err := c.GetItems(ctx, domain.Kind("radio"), ""); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestGet_NonSuccessIsNetworkError(t *testing.T) {
	calls := 0
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.GetSeries(context.Background(), "")
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected NetworkError, got %v", err)
	}
	if netErr.Action != "get_series" || netErr.StatusCode != 500 {
		t.Errorf("Unexpected error fields: %+v", netErr)
	}
	if calls != 1 {
		t.Errorf("Expected a single attempt, got %d", calls)
	}
}

func TestGet_MalformedBody(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"stream_id": `))
	})

	_, err := c.GetVODStreams(context.Background(), "")
	var decErr *domain.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("Expected decode failure classified as NetworkError, got %v", err)
	}
}

func TestGet_EmptyListingVariants(t *testing.T) {
	for _, body := range []string{"null", `""`, "[]", "{}"} {
		t.Run(body, func(t *testing.T) {
			_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			items, err := c.GetLiveStreams(context.Background(), "")
			if err != nil {
				t.Fatalf("Expected empty listing, got error %v", err)
			}
			if len(items) != 0 {
				t.Errorf("Expected 0 items, got %d", len(items))
			}
		})
	}
}

func TestGet_EmptyBodyIsDecodeError(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cats, err := c.GetCategories(context.Background(), domain.KindLive)
	var decErr *domain.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("Expected DecodeError, got cats=%v err=%v", cats, err)
	}
	if decErr.Action != "get_live_categories" {
		t.Errorf("Expected action get_live_categories, got %s", decErr.Action)
	}
}

func TestGetProfile_InvalidBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"null", "null"},
		{"empty string", `""`},
		{"empty object", "{}"},
		{"null user_info", `{"user_info":null,"server_info":{}}`},
		{"html", "<html>oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			acct, err := c.GetProfile(context.Background())
			if acct != nil {
				t.Errorf("Expected no account, got %+v", acct)
			}
			var authErr *domain.AuthenticationError
			if !errors.As(err, &authErr) {
				t.Fatalf("Expected AuthenticationError, got %v", err)
			}
			var decErr *domain.DecodeError
			if !errors.As(err, &decErr) {
				t.Errorf("Expected wrapped DecodeError, got %v", err)
			}
		})
	}
}

func TestGetProfile_TransportFailureIsAuthError(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := c.GetProfile(context.Background())
	var authErr *domain.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthenticationError, got %v", err)
	}
	if authErr.StatusCode != 0 {
		t.Errorf("Expected no status code, got %d", authErr.StatusCode)
	}
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		in   string
		want FlexString
	}{
		{`"12"`, "12"},
		{`12`, "12"},
		{`12.0`, "12"},
		{`7.5`, "7.5"},
		{`null`, ""},
		{`true`, "true"},
	}

	for _, tt := range tests {
		var f FlexString
		if err := f.UnmarshalJSON([]byte(tt.in)); err != nil {
			t.Errorf("UnmarshalJSON(%s) failed: %v", tt.in, err)
			continue
		}
		if f != tt.want {
			t.Errorf("UnmarshalJSON(%s) = %q, want %q", tt.in, f, tt.want)
		}
	}
}
