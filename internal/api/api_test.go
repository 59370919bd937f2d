package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/starford/jrnl/internal/journal"
	"github.com/starford/jrnl/internal/testutil"
)

// testEnv sets up a temp journal, SQLite DB, service, and router for
// testing. A non-empty authToken enables token mode.
func testEnv(t *testing.T, authToken string) (*journal.Service, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken, nil)
}

func testEnvWithSSE(t *testing.T, authToken string, sseHandler http.Handler) (*journal.Service, http.Handler) {
	t.Helper()
	_, store := testutil.TestJournal(t)
	db := testutil.TestDB(t)
	svc := journal.NewService(store, db, journal.WithClock(func() time.Time { return testutil.Date }))
	router := NewRouter(svc, authToken != "", authToken, sseHandler)
	return svc, router
}

func do(t *testing.T, router http.Handler, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createEntry(t *testing.T, router http.Handler, title, body string) EntryDetail {
	t.Helper()
	w := do(t, router, http.MethodPost, "/entries", map[string]any{"title": title, "body": body})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var e EntryDetail
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestCreateAndGetEntry(t *testing.T) {
	_, router := testEnv(t, "")

	created := createEntry(t, router, "Hello World", "first words")
	if created.Filename != "2024-03-08_Fr_hello_world.md" {
		t.Fatalf("filename = %q", created.Filename)
	}

	w := do(t, router, http.MethodGet, "/entries/"+created.Filename, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if got := w.Header().Get("ETag"); got != `"`+created.Checksum+`"` {
		t.Errorf("ETag = %q", got)
	}
	var e EntryDetail
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	if e.Title != "Hello World" || e.Body != "first words" {
		t.Errorf("entry = %+v", e)
	}
}

func TestGetRaw(t *testing.T) {
	_, router := testEnv(t, "")
	created := createEntry(t, router, "Raw", "text")

	w := do(t, router, http.MethodGet, "/entries/"+created.Filename+"/raw", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("raw status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "# Raw\n\n```json\n") {
		t.Errorf("raw body = %q", w.Body.String())
	}
}

func TestCreate_Validation(t *testing.T) {
	_, router := testEnv(t, "")

	cases := []any{
		map[string]any{"title": ""},
		map[string]any{"title": "x", "tags": []string{""}},
		"{not json",
	}
	for _, body := range cases {
		w := do(t, router, http.MethodPost, "/entries", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("create %v = %d, want 400", body, w.Code)
		}
	}
}

func TestCreate_DuplicateTagsRejectedBySchema(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/entries", map[string]any{"title": "Dup", "tags": []string{"a", "a"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate tags = %d, want 422", w.Code)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")
	createEntry(t, router, "Same", "")

	w := do(t, router, http.MethodPost, "/entries", map[string]any{"title": "Same"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")
	created := createEntry(t, router, "Lock", "v1")
	target := "/entries/" + created.Filename

	w := do(t, router, http.MethodPut, target, map[string]any{"body": "v2"}, "If-Match", `"`+created.Checksum+`"`)
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPut, target, map[string]any{"body": "v3"}, "If-Match", created.Checksum)
	if w.Code != http.StatusPreconditionFailed {
		t.Errorf("update with stale checksum = %d, want 412", w.Code)
	}
}

func TestUpdate_Validation(t *testing.T) {
	_, router := testEnv(t, "")
	created := createEntry(t, router, "Keep", "")
	target := "/entries/" + created.Filename

	for _, body := range []any{map[string]any{}, map[string]any{"title": ""}} {
		w := do(t, router, http.MethodPut, target, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("update %v = %d, want 400", body, w.Code)
		}
	}
}

func TestUpdate_Retitle(t *testing.T) {
	_, router := testEnv(t, "")
	created := createEntry(t, router, "Before", "body")

	w := do(t, router, http.MethodPut, "/entries/"+created.Filename, map[string]any{"title": "After"})
	if w.Code != http.StatusOK {
		t.Fatalf("retitle = %d, body = %s", w.Code, w.Body.String())
	}
	var e EntryDetail
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	if e.Filename != "2024-03-08_Fr_after.md" {
		t.Errorf("filename = %q", e.Filename)
	}
	if w := do(t, router, http.MethodGet, "/entries/"+created.Filename, nil); w.Code != http.StatusNotFound {
		t.Errorf("old filename = %d, want 404", w.Code)
	}
}

func TestDeleteEntry(t *testing.T) {
	_, router := testEnv(t, "")
	created := createEntry(t, router, "Bye", "gone")

	w := do(t, router, http.MethodDelete, "/entries/"+created.Filename, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	w = do(t, router, http.MethodGet, "/entries/"+created.Filename, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	w = do(t, router, http.MethodDelete, "/entries/"+created.Filename, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestListEntries(t *testing.T) {
	_, router := testEnv(t, "")
	createEntry(t, router, "One", "")
	createEntry(t, router, "Two", "")

	w := do(t, router, http.MethodGet, "/entries?limit=10&sort=title", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp EntryListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Entries) != 2 || resp.Entries[0].Title != "One" {
		t.Errorf("list = %+v", resp)
	}

	for _, q := range []string{"?sort=size", "?limit=x", "?offset=-1"} {
		if w := do(t, router, http.MethodGet, "/entries"+q, nil); w.Code != http.StatusBadRequest {
			t.Errorf("list %s = %d, want 400", q, w.Code)
		}
	}
}

func TestSearchAndTags(t *testing.T) {
	_, router := testEnv(t, "")
	do(t, router, http.MethodPost, "/entries", map[string]any{"title": "Find", "body": "uniquetoken here", "tags": []string{"x"}})

	w := do(t, router, http.MethodGet, "/search?q=uniquetoken", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var sr SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &sr)
	if len(sr.Results) != 1 {
		t.Errorf("search results = %d, want 1", len(sr.Results))
	}

	w = do(t, router, http.MethodGet, "/tags", nil)
	var tr TagsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &tr)
	if len(tr.Tags) != 1 || tr.Tags[0] != (TagCount{Tag: "x", Count: 1}) {
		t.Errorf("tags = %+v", tr.Tags)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestValidateEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/validate", "# T\n\n```json\n{\"date\": 1}\n```\n")
	if w.Code != http.StatusOK {
		t.Fatalf("validate = %d", w.Code)
	}
	var v journal.Validation
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if !v.WellFormed || v.Valid || v.Kind != "format_error" {
		t.Errorf("validation = %+v", v)
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/entries/nope.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing entry = %d, want 404", w.Code)
	}
}

func TestUpdateEntry_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodPut, "/entries/ghost.md", map[string]any{"body": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret123")

	cases := []struct {
		name   string
		header []string
		want   int
	}{
		{"valid", []string{"Authorization", "Bearer secret123"}, http.StatusOK},
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", []string{"Authorization", "Bearer wrong"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, router, http.MethodGet, "/entries", nil, tc.header...); w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/entries", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, "secret", blockingSSE)
	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}
