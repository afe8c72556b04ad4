// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lotion/internal/notion"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Due Date", "due_date"},
		{"  Trimmed  ", "trimmed"},
		{"Multi  Word   Name", "multi_word_name"},
		{"Price ($)", "price"},
		{"already_snake", "already_snake"},
		{"Mixed-Case/Name", "mixed_case_name"},
		{"__edges__", "edges"},
	}

	for _, tt := range tests {
		if got := snakeCase(tt.in); got != tt.want {
			t.Errorf("snakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func samplePage() notion.Page {
	return notion.Page{
		ID:             "abc123",
		URL:            "https://www.notion.so/abc123",
		LastEditedTime: "2026-02-01T10:00:00.000Z",
		Properties: notion.PropertyList{
			{Name: "Name", Property: notion.Property{Type: "title",
				Title: []notion.RichText{{PlainText: "My Page"}}}},
			{Name: "Due Date", Property: notion.Property{Type: "date",
				Date: &notion.DateValue{Start: "2026-03-01"}}},
			{Name: "Owner", Property: notion.Property{Type: "select"}}, // nil value, skipped
			{Name: "Done", Property: notion.Property{Type: "checkbox", Checkbox: true}},
		},
	}
}

func TestBuildFrontmatter(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 30, 0, 0, time.UTC)

	got, err := BuildFrontmatter(samplePage(), nil, now)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(got, "---\n") || !strings.HasSuffix(got, "---\n") {
		t.Errorf("frontmatter not fenced: %q", got)
	}

	// Keys appear in display order: title first, then properties, then the
	// fixed sync fields.
	wantOrder := []string{"title:", "due_date:", "done:", "notion_id:", "notion_url:", "last_synced:"}
	pos := -1
	for _, key := range wantOrder {
		i := strings.Index(got, key)
		if i < 0 {
			t.Fatalf("frontmatter missing key %q in %q", key, got)
		}
		if i < pos {
			t.Errorf("key %q out of order in %q", key, got)
		}
		pos = i
	}

	if strings.Contains(got, "owner:") {
		t.Errorf("nil-valued property should be skipped: %q", got)
	}

	var decoded map[string]any
	body := strings.TrimSuffix(strings.TrimPrefix(got, "---\n"), "---\n")
	if err := yaml.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("frontmatter is not valid YAML: %v\n%s", err, got)
	}
	if decoded["title"] != "My Page" {
		t.Errorf("title = %v, want My Page", decoded["title"])
	}
	if decoded["last_synced"] != "2026-02-15T12:30:00Z" {
		t.Errorf("last_synced = %v", decoded["last_synced"])
	}
	if decoded["done"] != true {
		t.Errorf("done = %v, want true", decoded["done"])
	}
}

func TestBuildFrontmatter_ExtrasOverride(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 30, 0, 0, time.UTC)
	extra := map[string]any{
		"title":  "Overridden",
		"zeta":   "last",
		"custom": "value",
	}

	got, err := BuildFrontmatter(samplePage(), extra, now)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	body := strings.TrimSuffix(strings.TrimPrefix(got, "---\n"), "---\n")
	if err := yaml.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["title"] != "Overridden" {
		t.Errorf("title = %v, want Overridden", decoded["title"])
	}
	if decoded["custom"] != "value" {
		t.Errorf("custom = %v, want value", decoded["custom"])
	}

	// Overriding must not duplicate the key, and the overridden title keeps
	// its original leading position.
	if strings.Count(got, "title:") != 1 {
		t.Errorf("title key duplicated: %q", got)
	}
	if !strings.HasPrefix(got, "---\ntitle:") {
		t.Errorf("overridden title moved from its original position: %q", got)
	}

	// New extra keys append in sorted key order.
	if ci, zi := strings.Index(got, "custom:"), strings.Index(got, "zeta:"); ci > zi {
		t.Errorf("extras not appended in sorted order: %q", got)
	}
}

func TestBuildFrontmatter_UntitledPage(t *testing.T) {
	page := notion.Page{ID: "p1", URL: "https://www.notion.so/p1"}

	got, err := BuildFrontmatter(page, nil, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	body := strings.TrimSuffix(strings.TrimPrefix(got, "---\n"), "---\n")
	if err := yaml.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["title"] != "" {
		t.Errorf("title = %v, want empty string", decoded["title"])
	}
}
