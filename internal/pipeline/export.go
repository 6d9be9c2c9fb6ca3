package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardforge/cardforge/internal/archive"
	"github.com/cardforge/cardforge/internal/schema"
	"github.com/cardforge/cardforge/internal/tabular"
)

// ExportTabular writes the selected records' non-image fields to a
// spreadsheet, one row per record in selection order. An empty ids
// slice exports the whole table in creation order.
func (p *Pipeline) ExportTabular(ctx context.Context, table schema.Table, ids []uuid.UUID) (*Artifact, error) {
	recs, err := p.records.List(ctx, table.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	textFields := table.TextFields()
	header := make([]string, len(textFields))
	for i, f := range textFields {
		header[i] = f.Name
	}

	rows := make([][]string, len(recs))
	for i, rec := range recs {
		row := make([]string, len(textFields))
		for j, f := range textFields {
			row[j] = rec.Values[f.Name]
		}
		rows[i] = row
	}

	data, err := tabular.WriteXLSX(table.Name, header, rows)
	if err != nil {
		return nil, fmt.Errorf("write spreadsheet: %w", err)
	}

	name := fmt.Sprintf("%s_%s.xlsx", cleanName(table.Name), time.Now().Format("20060102_150405"))
	p.logger.Info("tabular export", "table", table.ID, "records", len(recs), "file", name)
	return &Artifact{Name: name, Data: data}, nil
}

// ExportImages builds one zip per image field holding every selected
// record's resolved image. Entries are named by the storage key's
// basename; pending and empty values are skipped, as are stored objects
// too small to be real images. Fields with no images produce no
// artifact.
func (p *Pipeline) ExportImages(ctx context.Context, table schema.Table, ids []uuid.UUID) ([]*Artifact, error) {
	imageFields := table.ImageFields()
	if len(imageFields) == 0 {
		return nil, fmt.Errorf("table %q has no image fields", table.ID)
	}

	recs, err := p.records.List(ctx, table.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	var artifacts []*Artifact
	for _, f := range imageFields {
		var buf bytes.Buffer
		w := archive.NewWriter(&buf)

		for _, rec := range recs {
			state := rec.Image(f.Name)
			if !state.IsResolved() {
				continue
			}
			data, err := p.store.Get(ctx, state.Key)
			if err != nil {
				p.logger.Warn("export skipping unreadable image", "table", table.ID, "key", state.Key, "error", err)
				continue
			}
			if len(data) < archive.MinImageSize {
				continue
			}
			if err := w.Add(path.Base(state.Key), data); err != nil {
				w.Close()
				return nil, fmt.Errorf("write zip entry %s: %w", state.Key, err)
			}
		}

		count := w.Count()
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("close zip for %q: %w", f.Name, err)
		}
		if count == 0 {
			continue
		}

		name := fmt.Sprintf("%s_%s_%s.zip", cleanName(table.Name), cleanName(f.Name), stamp)
		artifacts = append(artifacts, &Artifact{Name: name, Data: buf.Bytes()})
		p.logger.Info("image export", "table", table.ID, "field", f.Name, "images", count, "file", name)
	}
	return artifacts, nil
}

// cleanName makes a table or field name safe for a download filename.
func cleanName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}
