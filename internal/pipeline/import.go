package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cardforge/cardforge/internal/archive"
	"github.com/cardforge/cardforge/internal/ident"
	"github.com/cardforge/cardforge/internal/match"
	"github.com/cardforge/cardforge/internal/naming"
	"github.com/cardforge/cardforge/internal/record"
	"github.com/cardforge/cardforge/internal/schema"
	"github.com/cardforge/cardforge/internal/tabular"
)

// Import parses a tabular file, fuzzy-matches its headers to the
// table's fields, resolves image references against the supplied
// archives and persists one record per data row. Rows fail
// independently; structural problems and duplicate image identifiers
// abort the whole import before anything is written.
//
// archives maps image field names to raw zip bytes. Fields without an
// archive still accept identifiers; their rows get deferred markers.
func (p *Pipeline) Import(ctx context.Context, table schema.Table, tabularData []byte, archives map[string][]byte) (*ImportResult, error) {
	start := time.Now()

	indexes := make(map[string]*archive.Index)
	defer func() {
		for _, ix := range indexes {
			ix.Close()
		}
	}()
	for _, f := range table.ImageFields() {
		data, ok := archives[f.Name]
		if !ok {
			continue
		}
		ix, err := archive.FromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("read photo archive for %q: %w", f.Name, err)
		}
		indexes[f.Name] = ix
	}

	sheet, err := tabular.Parse(tabularData)
	if err != nil {
		return nil, fmt.Errorf("parse upload: %w", err)
	}

	cols := mapHeaders(table, sheet.Header)
	if len(cols.text) == 0 {
		return nil, fmt.Errorf("no columns in the upload match the table's fields")
	}

	if err := findDuplicateRefs(sheet, cols.image); err != nil {
		return nil, err
	}

	result := &ImportResult{MatchedFields: cols.matched}
	ordinal := 0

	for i, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if tabular.IsEmptyRow(row) {
			continue
		}
		// Row numbers count from the top of the file; the header is row 1.
		rowNum := i + 2

		rec := record.New(table.ID)
		for _, f := range table.Fields {
			if f.IsImage() {
				state, matched := p.resolveImage(ctx, table.ID, f.Name, row, cols.image, indexes, &ordinal)
				if matched {
					result.PhotosMatched++
				}
				rec.SetImage(f.Name, state)
				continue
			}
			col, ok := cols.text[f.Name]
			if !ok {
				rec.Values[f.Name] = ""
				continue
			}
			rec.Values[f.Name] = tabular.ConvertCell(cellAt(row, col), f.Name)
		}
		rec.NormalizeValues(&table)

		if err := p.records.Create(ctx, rec); err != nil {
			p.logger.Warn("row failed", "table", table.ID, "row", rowNum, "error", err)
			result.ErrorCount++
			if len(result.RowErrors) < maxReportedErrors {
				result.RowErrors = append(result.RowErrors, RowError{Row: rowNum, Err: err.Error()})
			}
			continue
		}
		result.RecordsCreated++
	}

	p.logger.Info("import finished",
		"table", table.ID,
		"records", result.RecordsCreated,
		"photos", result.PhotosMatched,
		"errors", result.ErrorCount,
		"duration", time.Since(start),
	)
	if p.metrics != nil {
		p.metrics.observeImport(table.ID, result, time.Since(start))
	}
	return result, nil
}

// columnMap is the outcome of header matching: text columns keyed by
// field name, image-reference columns keyed by image field name, and
// the matched header list for operator feedback.
type columnMap struct {
	text    map[string]int
	image   map[string]int
	matched []string
}

// mapHeaders assigns each header either to an image field (when its
// normalized form equals the field name's) or to a text field through
// the fuzzy matcher. Matching consumes fields, so a second similar
// header cannot claim an already-taken field.
func mapHeaders(table schema.Table, headers []string) columnMap {
	cols := columnMap{text: make(map[string]int), image: make(map[string]int)}

	imageByKey := make(map[string]string)
	for _, f := range table.ImageFields() {
		imageByKey[match.Key(f.Name)] = f.Name
	}

	var textNames []string
	for _, f := range table.TextFields() {
		textNames = append(textNames, f.Name)
	}
	matcher := match.NewMatcher(textNames)

	for i, h := range headers {
		if name, ok := imageByKey[match.Key(h)]; ok {
			if _, taken := cols.image[name]; !taken {
				cols.image[name] = i
			}
			continue
		}
		if name, ok := matcher.Match(h); ok {
			cols.text[name] = i
			cols.matched = append(cols.matched, name)
		}
	}
	return cols
}

// findDuplicateRefs scans every image-reference column before anything
// is written and reports every pair of rows whose identifiers collide.
func findDuplicateRefs(sheet *tabular.Sheet, imageCols map[string]int) error {
	var conflicts []Conflict
	for field, col := range imageCols {
		seen := make(map[string]int)
		for i, row := range sheet.Rows {
			id := ident.Normalize(cellAt(row, col).Identifier())
			if id == "" {
				continue
			}
			rowNum := i + 2
			if first, dup := seen[id]; dup {
				conflicts = append(conflicts, Conflict{
					Column:     field,
					Identifier: id,
					FirstRow:   first,
					SecondRow:  rowNum,
				})
				continue
			}
			seen[id] = rowNum
		}
	}
	if len(conflicts) > 0 {
		return &DuplicateError{Conflicts: conflicts}
	}
	return nil
}

// resolveImage turns one row's image-reference cell into an image
// state. An archive hit stores the bytes and yields a resolved key; a
// reference with no usable entry defers with a pending marker; no
// reference at all leaves the field empty.
func (p *Pipeline) resolveImage(ctx context.Context, tableID, field string, row []tabular.Cell, imageCols map[string]int, indexes map[string]*archive.Index, ordinal *int) (record.ImageState, bool) {
	col, ok := imageCols[field]
	if !ok {
		return record.EmptyImage(), false
	}
	ref := cellAt(row, col).Identifier()
	if ref == "" {
		return record.EmptyImage(), false
	}

	ix, ok := indexes[field]
	if !ok {
		return record.PendingImage(ref), false
	}
	entry, ok := ix.Get(ref)
	if !ok {
		return record.PendingImage(ref), false
	}

	*ordinal++
	key, err := p.storeImage(ctx, tableID, naming.NewName(entry.Ext, *ordinal), entry.Ext, entry.Bytes)
	if err != nil {
		p.logger.Warn("image write failed, field left empty", "table", tableID, "field", field, "ref", ref, "error", err)
		return record.EmptyImage(), false
	}
	return record.ResolvedImage(key), true
}

// storeImage writes image bytes under the table's prefix, retrying once
// with an opaque fallback name before giving up.
func (p *Pipeline) storeImage(ctx context.Context, tableID, name, ext string, data []byte) (string, error) {
	key := imageKey(tableID, name)
	if err := p.store.Put(ctx, key, data); err == nil {
		return key, nil
	}
	key = imageKey(tableID, naming.FallbackName(ext))
	if err := p.store.Put(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

func imageKey(tableID, name string) string {
	return "cards/" + tableID + "/" + name
}

// cellAt tolerates ragged rows shorter than the header.
func cellAt(row []tabular.Cell, i int) tabular.Cell {
	if i < 0 || i >= len(row) {
		return tabular.Cell{}
	}
	return row[i]
}
