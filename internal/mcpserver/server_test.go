package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/jrnl/internal/journal"
	"github.com/starford/jrnl/internal/storage"
	"github.com/starford/jrnl/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()
	_, store := testutil.TestJournal(t)
	db := testutil.TestDB(t)
	svc := journal.NewService(store, db, journal.WithClock(func() time.Time { return testutil.Date }))
	return New(svc, "test"), store
}

// callTool invokes a tool handler directly; mcp-go has no in-process call helper.
func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_entries":     srv.listEntries,
		"read_entry":       srv.readEntry,
		"create_entry":     srv.createEntry,
		"search_entries":   srv.searchEntries,
		"validate_entry":   srv.validateEntry,
		"get_entry_format": srv.getEntryFormat,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadEntry(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_entry", map[string]any{
		"title": "Morning",
		"body":  "Hello",
		"tags":  []any{"daily"},
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	var created journal.EntryDetail
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatalf("decode create result: %v", err)
	}
	if created.Filename != "2024-03-08_Fr_morning.md" || len(created.Tags) != 1 {
		t.Errorf("created = %+v", created)
	}

	r = callTool(t, srv, "read_entry", map[string]any{"filename": created.Filename})
	text := resultText(r)
	if !strings.HasPrefix(text, "# Morning\n") || !strings.HasSuffix(text, "Hello\n") {
		t.Errorf("read result = %q", text)
	}
}

func TestCreateEntry_Duplicate(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "create_entry", map[string]any{"title": "Twice"})
	r := callTool(t, srv, "create_entry", map[string]any{"title": "Twice"})
	if !r.IsError || !strings.HasPrefix(resultText(r), "already_exists:") {
		t.Errorf("duplicate create = %q (error %v)", resultText(r), r.IsError)
	}
}

func TestCreateEntry_MissingTitle(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "create_entry", map[string]any{"body": "x"})
	if !r.IsError {
		t.Error("expected error without title")
	}
}

func TestListEntries(t *testing.T) {
	srv, store := testServer(t)
	testutil.WriteEntry(t, store, "A", testutil.Date, "", "x")
	testutil.WriteEntry(t, store, "B", testutil.Date, "")
	_ = srv.svc.Reindex("2024-03-08_Fr_a.md")
	_ = srv.svc.Reindex("2024-03-08_Fr_b.md")

	r := callTool(t, srv, "list_entries", map[string]any{"tag": "x"})
	var resp struct {
		Entries []journal.EntryListItem `json:"entries"`
		Total   int                     `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &resp); err != nil {
		t.Fatalf("decode: %v (%s)", err, resultText(r))
	}
	if resp.Total != 1 || resp.Entries[0].Title != "A" {
		t.Errorf("list = %+v", resp)
	}
}

func TestReadEntryMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_entry", map[string]any{"filename": "nope.md"})
	if !r.IsError || !strings.HasPrefix(resultText(r), "not_found:") {
		t.Errorf("missing read = %q", resultText(r))
	}
}

func TestSearchEntries(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "create_entry", map[string]any{"title": "Walk", "body": "saw a heron"})

	r := callTool(t, srv, "search_entries", map[string]any{"query": "heron"})
	if !strings.Contains(resultText(r), "2024-03-08_Fr_walk.md") {
		t.Errorf("search = %q", resultText(r))
	}
	r = callTool(t, srv, "search_entries", map[string]any{"query": "albatross"})
	if resultText(r) != "no entries found" {
		t.Errorf("empty search = %q", resultText(r))
	}
}

func TestValidateEntry(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "validate_entry", map[string]any{"content": "no header"})
	var v journal.Validation
	if err := json.Unmarshal([]byte(resultText(r)), &v); err != nil {
		t.Fatal(err)
	}
	if v.Valid || v.Kind != "format_error" {
		t.Errorf("validation = %+v", v)
	}
}

func TestEntryFormat(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "get_entry_format", nil))
	for _, want := range []string{"```json", `"additionalProperties": false`, "Su Mo Tu We Th Fr Sa"} {
		if !strings.Contains(text, want) {
			t.Errorf("contract missing %q", want)
		}
	}
	if strings.Contains(text, "FENCE") || strings.Contains(text, "SCHEMA") {
		t.Error("contract has unreplaced placeholders")
	}

	contents, err := srv.readEntryFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != EntryFormatURI {
		t.Errorf("resource contents = %+v", contents[0])
	}
}
