package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/starford/jrnl/internal/journal"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *journal.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *journal.Service) *Handler {
	return &Handler{svc: svc}
}

// entryFilename extracts the {filename} URL parameter.
func entryFilename(r *http.Request) string {
	raw := chi.URLParam(r, "filename")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func setETag(w http.ResponseWriter, sum string) {
	w.Header().Set("ETag", `"`+sum+`"`)
}

// ListEntries handles GET /entries.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lq := listQuery{Tag: q.Get("tag"), Sort: q.Get("sort")}
	var err error
	if lq.Limit, err = intParam(q, "limit"); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("limit must be an integer"))
		return
	}
	if lq.Offset, err = intParam(q, "offset"); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("offset must be an integer"))
		return
	}
	if err := lq.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	items, total, err := h.svc.List(r.Context(), journal.ListParams(lq))
	if err != nil {
		writeError(w, "list entries", err)
		return
	}
	if items == nil {
		items = []EntryListItem{}
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: items, Total: total})
}

// GetEntry handles GET /entries/{filename}.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), entryFilename(r))
	if err != nil {
		writeError(w, "get entry", err)
		return
	}
	setETag(w, e.Checksum)
	writeJSON(w, http.StatusOK, e)
}

// GetRaw handles GET /entries/{filename}/raw.
func (h *Handler) GetRaw(w http.ResponseWriter, r *http.Request) {
	data, sum, err := h.svc.Raw(r.Context(), entryFilename(r))
	if err != nil {
		writeError(w, "get raw entry", err)
		return
	}
	setETag(w, sum)
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// CreateEntry handles POST /entries.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	e, err := h.svc.Create(r.Context(), journal.CreateInput{Title: req.Title, Body: req.Body, Tags: req.Tags})
	if err != nil {
		writeError(w, "create entry", err)
		return
	}
	setETag(w, e.Checksum)
	w.Header().Set("Location", "/entries/"+url.PathEscape(e.Filename))
	writeJSON(w, http.StatusCreated, e)
}

// UpdateEntry handles PUT /entries/{filename}. An If-Match header makes the
// update conditional on the stored checksum.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	e, err := h.svc.Update(r.Context(), entryFilename(r), journal.UpdateInput{
		Title:   req.Title,
		Body:    req.Body,
		Tags:    req.Tags,
		IfMatch: r.Header.Get("If-Match"),
	})
	if err != nil {
		writeError(w, "update entry", err)
		return
	}
	setETag(w, e.Checksum)
	writeJSON(w, http.StatusOK, e)
}

// DeleteEntry handles DELETE /entries/{filename}.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), entryFilename(r), r.Header.Get("If-Match")); err != nil {
		writeError(w, "delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult(hit)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Tags handles GET /tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Tags(r.Context())
	if err != nil {
		writeError(w, "tags", err)
		return
	}
	tags := make([]TagCount, len(counts))
	for i, c := range counts {
		tags[i] = TagCount(c)
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// Validate handles POST /validate. The request body is raw entry text.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Validate(r.Context(), data))
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
