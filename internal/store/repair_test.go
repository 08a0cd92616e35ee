package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jkaninda/resourcebot/internal/domain"
)

func TestSanitizeDropsMalformedEntries(t *testing.T) {
	raw := map[string]json.RawMessage{
		"good":     json.RawMessage(`{"course_code":"cse421","file_id":"f1","file_type":"photo","uploader_id":7,"uploader_name":"Nadia"}`),
		"no-file":  json.RawMessage(`{"course_code":"CSE421","file_type":"photo"}`),
		"no-kind":  json.RawMessage(`{"course_code":"CSE421","file_id":"f2"}`),
		"bad-kind": json.RawMessage(`{"course_code":"CSE421","file_id":"f3","file_type":"sticker"}`),
		"garbage":  json.RawMessage(`"just a string"`),
	}

	clean := Sanitize(raw, testLogger())

	if len(clean) != 1 {
		t.Fatalf("kept %d entries, want 1: %v", len(clean), clean)
	}
	rec, ok := clean["good"]
	if !ok {
		t.Fatal("the well-formed entry was dropped")
	}
	if rec.CourseCode != "CSE421" {
		t.Errorf("course code = %q, want normalized CSE421", rec.CourseCode)
	}
}

func TestRepairFileMissingFileIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approved.json")
	if err := RepairFile(path, testLogger()); err != nil {
		t.Fatalf("repair missing file: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("repair created a file for a missing collection")
	}
}

func TestRepairFileRewritesBrokenCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approved.json")
	content := `{
  "ok":  {"course_code":"CSE421","file_id":"f1","file_type":"document","uploader_id":1,"uploader_name":"A"},
  "bad": {"course_code":"CSE421"}
}`
	if err := os.WriteFile(path, []byte(content), 0640); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := RepairFile(path, testLogger()); err != nil {
		t.Fatalf("repair: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	got := map[string]domain.Record{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("repaired file does not decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("repaired catalog = %v, want only the ok entry", got)
	}
	if _, ok := got["ok"]; !ok {
		t.Error("well-formed entry lost during repair")
	}
}

func TestRepairFileResetsNonObjectTopLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approved.json")
	if err := os.WriteFile(path, []byte(`[1,2,3]`), 0640); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := RepairFile(path, testLogger()); err != nil {
		t.Fatalf("repair: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	got := map[string]domain.Record{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("reset file does not decode as a collection: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("reset collection = %v, want empty", got)
	}
}

func TestRepairFileLeavesCleanCatalogUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approved.json")
	content := `{"ok":{"course_code":"CSE421","file_id":"f1","file_type":"document","uploader_id":1,"uploader_name":"A"}}`
	if err := os.WriteFile(path, []byte(content), 0640); err != nil {
		t.Fatalf("seed: %v", err)
	}
	before, _ := os.Stat(path)

	if err := RepairFile(path, testLogger()); err != nil {
		t.Fatalf("repair: %v", err)
	}

	after, _ := os.Stat(path)
	if !after.ModTime().Equal(before.ModTime()) || after.Size() != before.Size() {
		t.Errorf("clean catalog was rewritten")
	}
}
