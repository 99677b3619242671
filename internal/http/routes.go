package httpapp

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/cesargomez89/streamhub/internal/http/dto"
)

const maxBodyBytes = 1 << 16

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	profile := req.ToProfile()
	if req.Async {
		runID, err := h.Session.StartSync(&profile)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusAccepted, dto.SyncStartedResponse{RunID: runID})
		return
	}

	res, err := h.Session.Login(r.Context(), profile)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewSyncResultResponse(res))
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Session.Profile(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewProfileResponse(p))
}

// StartSync re-syncs the stored profile. ?wait=true blocks until the run ends.
func (h *Handler) StartSync(w http.ResponseWriter, r *http.Request) {
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		res, err := h.Session.Sync(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, dto.NewSyncResultResponse(res))
		return
	}

	runID, err := h.Session.StartSync(nil)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, dto.SyncStartedResponse{RunID: runID})
}

func (h *Handler) CancelSync(w http.ResponseWriter, r *http.Request) {
	if !h.Session.Cancel() {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no sync in progress"})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Session.Status()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewSyncStatusResponse(status))
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	kind, errs := dto.ParseKind("type", r.URL.Query().Get("type"))
	if errs != nil {
		h.writeValidation(w, errs)
		return
	}
	categories, err := h.Session.Categories(r.Context(), kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) Channels(w http.ResponseWriter, r *http.Request) {
	items, err := h.Session.Channels(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(h, w, r, items)
}

func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	items, err := h.Session.Movies(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(h, w, r, items)
}

func (h *Handler) Series(w http.ResponseWriter, r *http.Request) {
	items, err := h.Session.Series(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePage(h, w, r, items)
}

func writePage[T any](h *Handler, w http.ResponseWriter, r *http.Request, items []T) {
	page, size := dto.ParsePage(r.URL.Query())
	h.writeJSON(w, http.StatusOK, dto.Paginate(items, page, size))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Session.Counts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, counts)
}

func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Purge(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		h.writeValidation(w, []dto.ValidationError{{Field: "url", Message: "is required"}})
		return
	}
	h.writeJSON(w, http.StatusOK, dto.PlayResponse{URL: h.Session.PlayURL(r.Context(), target)})
}

