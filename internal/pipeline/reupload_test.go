package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/cardforge/cardforge/internal/naming"
	"github.com/cardforge/cardforge/internal/record"
)

func TestReuploadResolvesPendingRecord(t *testing.T) {
	ctx := context.Background()
	p, store, records := newTestPipeline()
	table := studentTable()

	// Import with a mismatched archive leaves the photo deferred.
	csv := []byte("Name,Roll No,Photo\nAarav Sharma,1001,1\n")
	if _, err := p.Import(ctx, table, csv, nil); err != nil {
		t.Fatalf("Import: %v", err)
	}

	result, err := p.Reupload(ctx, table, buildZip(t, map[string][]byte{"1.jpg": testPNG(t)}), nil)
	if err != nil {
		t.Fatalf("Reupload: %v", err)
	}
	if result.ImagesMatched != 1 || result.CardsUpdated != 1 || result.InvalidImages != 0 {
		t.Fatalf("result = %+v", result)
	}

	recs, _ := records.List(ctx, "students", nil)
	state := recs[0].Image("Photo")
	if !state.IsResolved() {
		t.Fatalf("photo still %q", recs[0].Values["Photo"])
	}
	if _, err := store.Get(ctx, state.Key); err != nil {
		t.Errorf("stored image missing: %v", err)
	}
}

func TestReuploadVersionsResolvedImage(t *testing.T) {
	ctx := context.Background()
	p, store, records := newTestPipeline()
	table := studentTable()

	oldKey := "cards/students/14325112345601.jpg"
	if err := store.Put(ctx, oldKey, testPNG(t)); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	rec := record.New("students")
	rec.Values["Name"] = "AARAV SHARMA"
	rec.SetImage("Photo", record.ResolvedImage(oldKey))
	if err := records.Create(ctx, rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	// The archive names the replacement by the stored key's basename.
	zipData := buildZip(t, map[string][]byte{"14325112345601.jpg": testPNG(t)})
	result, err := p.Reupload(ctx, table, zipData, nil)
	if err != nil {
		t.Fatalf("Reupload: %v", err)
	}
	if result.ImagesMatched != 1 || result.CardsUpdated != 1 {
		t.Fatalf("result = %+v", result)
	}

	got, _ := records.Get(ctx, rec.ID)
	state := got.Image("Photo")
	if !state.IsResolved() || state.Key == oldKey {
		t.Fatalf("photo = %+v, want a fresh versioned key", state)
	}

	oldLineage, ok := naming.Lineage(oldKey)
	if !ok {
		t.Fatal("seed key has no lineage")
	}
	newLineage, ok := naming.Lineage(state.Key)
	if !ok || newLineage != oldLineage {
		t.Errorf("lineage = %q, want %q preserved", newLineage, oldLineage)
	}

	if ok, _ := store.Exists(ctx, oldKey); ok {
		t.Error("superseded image bytes not deleted")
	}
	if ok, _ := store.Exists(ctx, state.Key); !ok {
		t.Error("replacement image bytes missing")
	}
}

func TestReuploadNewLineageForPreviouslyPending(t *testing.T) {
	ctx := context.Background()
	p, _, records := newTestPipeline()
	table := studentTable()

	rec := record.New("students")
	rec.SetImage("Photo", record.PendingImage("1"))
	if err := records.Create(ctx, rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	if _, err := p.Reupload(ctx, table, buildZip(t, map[string][]byte{"1.jpg": testPNG(t)}), nil); err != nil {
		t.Fatalf("Reupload: %v", err)
	}

	got, _ := records.Get(ctx, rec.ID)
	key := got.Image("Photo").Key
	if strings.Contains(key, "_") {
		t.Errorf("key = %q, pending resolution must not carry a revision suffix", key)
	}
}

func TestReuploadLeavesUnmatchedRecordsAlone(t *testing.T) {
	ctx := context.Background()
	p, _, records := newTestPipeline()
	table := studentTable()

	rec := record.New("students")
	rec.SetImage("Photo", record.PendingImage("999"))
	if err := records.Create(ctx, rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	result, err := p.Reupload(ctx, table, buildZip(t, map[string][]byte{"1.jpg": testPNG(t)}), nil)
	if err != nil {
		t.Fatalf("Reupload: %v", err)
	}
	if result.ImagesMatched != 0 || result.CardsUpdated != 0 {
		t.Errorf("result = %+v, want all zeros", result)
	}

	got, _ := records.Get(ctx, rec.ID)
	if got.Values["Photo"] != "PENDING:999" {
		t.Errorf("Photo = %q, record should be untouched", got.Values["Photo"])
	}
}

func TestReuploadCountsInvalidImages(t *testing.T) {
	ctx := context.Background()
	p, _, records := newTestPipeline()
	table := studentTable()

	rec := record.New("students")
	rec.SetImage("Photo", record.PendingImage("1"))
	if err := records.Create(ctx, rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	// The entry is indexed by name but its bytes are garbage.
	zipData := buildZip(t, map[string][]byte{"1.jpg": []byte("not an image, not even close to one hundred bytes of raster data")})
	result, err := p.Reupload(ctx, table, zipData, nil)
	if err != nil {
		t.Fatalf("Reupload: %v", err)
	}
	if result.ImagesMatched != 0 || result.InvalidImages != 1 {
		t.Errorf("result = %+v, want one invalid image", result)
	}
}

func TestReuploadScopedToSelection(t *testing.T) {
	ctx := context.Background()
	p, _, records := newTestPipeline()
	table := studentTable()

	a := record.New("students")
	a.SetImage("Photo", record.PendingImage("1"))
	b := record.New("students")
	b.SetImage("Photo", record.PendingImage("1"))
	for _, rec := range []*record.Record{a, b} {
		if err := records.Create(ctx, rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	zipData := buildZip(t, map[string][]byte{"1.jpg": testPNG(t)})
	result, err := p.Reupload(ctx, table, zipData, []uuid.UUID{a.ID})
	if err != nil {
		t.Fatalf("Reupload: %v", err)
	}
	if result.CardsUpdated != 1 {
		t.Fatalf("result = %+v", result)
	}

	gotB, _ := records.Get(ctx, b.ID)
	if gotB.Values["Photo"] != "PENDING:1" {
		t.Errorf("unselected record changed: %q", gotB.Values["Photo"])
	}
}

func TestReuploadRequiresImageField(t *testing.T) {
	p, _, _ := newTestPipeline()
	table := studentTable()
	table.Fields = table.Fields[:2] // drop Photo

	if _, err := p.Reupload(context.Background(), table, buildZip(t, map[string][]byte{"1.jpg": testPNG(t)}), nil); err == nil {
		t.Fatal("reupload accepted a table without image fields")
	}
}

func TestReuploadRejectsEmptyArchive(t *testing.T) {
	p, _, _ := newTestPipeline()

	zipData := buildZip(t, map[string][]byte{"readme.txt": []byte("nothing to see")})
	if _, err := p.Reupload(context.Background(), studentTable(), zipData, nil); err == nil {
		t.Fatal("reupload accepted an archive with no images")
	}
}
