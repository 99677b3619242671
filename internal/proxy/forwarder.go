package proxy

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/streamhub/internal/constants"
	"github.com/cesargomez89/streamhub/internal/logger"
	"github.com/cesargomez89/streamhub/internal/metrics"
)

var (
	forwardRequestHeaders  = []string{"Range", "User-Agent", "Accept"}
	forwardResponseHeaders = []string{"Content-Type", "Content-Length", "Content-Range", "Accept-Ranges"}
)

// Forwarder relays GET /proxy?url=<target> to the upstream stream server,
// streaming the body back with permissive CORS.
type Forwarder struct {
	client *http.Client
	logger *logger.Logger
}

// NewForwarder creates a forwarder. A nil client gets one without an overall
// timeout, since live streams never finish.
func NewForwarder(client *http.Client, log *logger.Logger) *Forwarder {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		}
	}
	if log == nil {
		log = logger.Default()
	}
	return &Forwarder{client: client, logger: log.WithComponent("forwarder")}
}

func (f *Forwarder) RegisterRoutes(r chi.Router) {
	r.Get(constants.ProxyPath, f.ServeProxy)
}

func (f *Forwarder) ServeProxy(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		http.Error(w, "invalid url parameter", http.StatusBadRequest)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, u.String(), nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, h := range forwardRequestHeaders {
		if v := r.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.RecordProxyRequest(http.StatusInternalServerError)
		f.logger.Warn("Upstream request failed", "host", u.Host, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	for _, h := range forwardResponseHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(resp.StatusCode)
	metrics.RecordProxyRequest(resp.StatusCode)

	if _, err := io.Copy(flushWriter{w}, resp.Body); err != nil {
		f.logger.Debug("Stream copy ended", "host", u.Host, "error", err)
	}
}

// flushWriter flushes after every write so segments reach the player promptly.
type flushWriter struct {
	w http.ResponseWriter
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if f, ok := fw.w.(http.Flusher); ok {
		f.Flush()
	}
	return n, err
}
