package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jkaninda/resourcebot/internal/domain"
)

func openTestDB(t *testing.T) *DBStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"), testLogger())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestDBStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	if records, err := st.Load(ctx, domain.CollectionPending); err != nil || len(records) != 0 {
		t.Fatalf("fresh collection = (%v, %v), want empty map", records, err)
	}

	want := map[string]domain.Record{
		"k1": {CourseCode: "CSE421", FileID: "f1", FileKind: domain.FilePhoto, UploaderID: 7, UploaderName: "Nadia"},
		"k2": {CourseCode: "MAT110", FileID: "f2", FileKind: domain.FileDocument, UploaderID: 8, UploaderName: "Rafi"},
	}
	if err := st.Save(ctx, domain.CollectionApproved, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := st.Load(ctx, domain.CollectionApproved)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for key, rec := range want {
		if got[key] != rec {
			t.Errorf("record %s = %+v, want %+v", key, got[key], rec)
		}
	}

	// Collections are isolated.
	if records, _ := st.Load(ctx, domain.CollectionPending); len(records) != 0 {
		t.Errorf("pending sees approved rows: %v", records)
	}
}

func TestDBStoreSaveIsFullReplace(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	if err := st.Save(ctx, domain.CollectionPending, map[string]domain.Record{
		"k1": {CourseCode: "CSE421", FileID: "f1", FileKind: domain.FilePhoto},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.Save(ctx, domain.CollectionPending, map[string]domain.Record{
		"k2": {CourseCode: "MAT110", FileID: "f2", FileKind: domain.FileDocument},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := st.Load(ctx, domain.CollectionPending)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("collection = %v, want exactly the second save", got)
	}
	if _, ok := got["k2"]; !ok {
		t.Errorf("k2 missing after full-replace save")
	}
}

func TestDBStoreUpdate(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	err := st.Update(ctx, domain.CollectionPending, func(records map[string]domain.Record) bool {
		records["k1"] = domain.Record{CourseCode: "CSE421", FileID: "f1", FileKind: domain.FileDocument}
		return true
	})
	if err != nil {
		t.Fatalf("insert update: %v", err)
	}

	err = st.Update(ctx, domain.CollectionPending, func(records map[string]domain.Record) bool {
		delete(records, "k1")
		return true
	})
	if err != nil {
		t.Fatalf("delete update: %v", err)
	}

	if got, _ := st.Load(ctx, domain.CollectionPending); len(got) != 0 {
		t.Errorf("collection after delete = %v, want empty", got)
	}
}
