package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func TestTemplateCRUD(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	// Insert.
	tpl, err := s.Put(ctx, "greeting", `<p>Hello <name>x</name></p>`, "rules:\n  - query: name\n    text: World\n")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasPrefix(tpl.ID, "tpl_") {
		t.Errorf("ID: got %q, want tpl_ prefix", tpl.ID)
	}
	if tpl.CreatedAt == 0 || tpl.UpdatedAt < tpl.CreatedAt {
		t.Errorf("timestamps: created %d updated %d", tpl.CreatedAt, tpl.UpdatedAt)
	}

	// Upsert keeps the ID.
	again, err := s.Put(ctx, "greeting", `<p>Hi <name>x</name></p>`, "")
	if err != nil {
		t.Fatalf("put again: %v", err)
	}
	if again.ID != tpl.ID {
		t.Errorf("ID changed on upsert: %q -> %q", tpl.ID, again.ID)
	}
	if again.HTML != `<p>Hi <name>x</name></p>` || again.Rules != "" {
		t.Errorf("upsert not applied: %+v", again)
	}

	// List.
	if _, err := s.Put(ctx, "other", `<p/>`, ""); err != nil {
		t.Fatalf("put other: %v", err)
	}
	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("list: got %d, want 2", len(all))
	}

	// Delete.
	ok, err := s.Delete(ctx, "greeting")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = s.Delete(ctx, "greeting")
	if err != nil || ok {
		t.Errorf("second delete: got %v %v, want false nil", ok, err)
	}
	got, err := s.Get(ctx, "greeting")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("get after delete: got %+v, want nil", got)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "domfill.db")
	n := 0
	s, err := Open(path, WithMkdirAll(), WithIDGenerator(func() string {
		n++
		return "id-" + string(rune('0'+n))
	}))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	tpl, err := s.Put(context.Background(), "a", "<p>a</p>", "")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if tpl.ID != "id-1" {
		t.Errorf("ID: got %q, want id-1", tpl.ID)
	}
}
