package pipeline

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/cardforge/cardforge/internal/archive"
	"github.com/cardforge/cardforge/internal/naming"
	"github.com/cardforge/cardforge/internal/record"
	"github.com/cardforge/cardforge/internal/schema"
)

// Reupload matches a fresh photo archive against already-imported
// records, resolving deferred markers and replacing previously stored
// images. Records the archive has nothing for stay untouched.
func (p *Pipeline) Reupload(ctx context.Context, table schema.Table, archiveData []byte, ids []uuid.UUID) (*ReuploadResult, error) {
	imageFields := table.ImageFields()
	if len(imageFields) == 0 {
		return nil, fmt.Errorf("table %q has no image fields", table.ID)
	}

	ix, err := archive.FromBytes(archiveData)
	if err != nil {
		return nil, fmt.Errorf("read photo archive: %w", err)
	}
	defer ix.Close()
	if ix.Len() == 0 {
		return nil, fmt.Errorf("archive contains no images")
	}

	recs, err := p.records.List(ctx, table.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	result := &ReuploadResult{}
	ordinal := 0

	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		updated := false
		for _, f := range imageFields {
			state := rec.Image(f.Name)
			entry, ok := p.lookup(ix, rec, state, result)
			if !ok {
				continue
			}

			var name string
			if state.IsResolved() {
				// Same logical image, new bytes: retire the old object and
				// keep its lineage in the new name.
				if err := p.store.Delete(ctx, state.Key); err != nil {
					p.logger.Warn("could not delete superseded image", "key", state.Key, "error", err)
				}
				name = naming.VersionedName(state.Key, entry.Ext)
			} else {
				ordinal++
				name = naming.NewName(entry.Ext, ordinal)
			}

			key, err := p.storeImage(ctx, table.ID, name, entry.Ext, entry.Bytes)
			if err != nil {
				p.logger.Warn("reupload image write failed", "table", table.ID, "field", f.Name, "error", err)
				continue
			}
			rec.SetImage(f.Name, record.ResolvedImage(key))
			result.ImagesMatched++
			updated = true
		}

		if updated {
			if err := p.records.Update(ctx, rec); err != nil {
				p.logger.Warn("reupload record update failed", "record", rec.ID, "error", err)
				continue
			}
			result.CardsUpdated++
		}
	}

	p.logger.Info("reupload finished",
		"table", table.ID,
		"matched", result.ImagesMatched,
		"updated", result.CardsUpdated,
		"invalid", result.InvalidImages,
	)
	return result, nil
}

// lookup tries the field's candidate identifiers against the index in
// priority order and returns the first entry that validates. Entries
// that exist but fail validation are counted as invalid.
func (p *Pipeline) lookup(ix *archive.Index, rec *record.Record, state record.ImageState, result *ReuploadResult) (*archive.Entry, bool) {
	for _, cand := range candidates(rec, state) {
		if !ix.Contains(cand) {
			continue
		}
		entry, ok := ix.Get(cand)
		if !ok {
			result.InvalidImages++
			continue
		}
		return entry, true
	}
	return nil, false
}

// candidates lists the identifiers that may name this field's image in
// the archive, most specific first: the deferred reference, then the
// stored key's basename, then the record id itself.
func candidates(rec *record.Record, state record.ImageState) []string {
	switch {
	case state.IsPending():
		ref := state.Ref
		stem := strings.TrimSuffix(ref, path.Ext(ref))
		if stem != ref && stem != "" {
			return []string{ref, stem}
		}
		return []string{ref}
	case state.IsResolved():
		base := path.Base(state.Key)
		return []string{strings.TrimSuffix(base, path.Ext(base))}
	default:
		return []string{rec.ID.String()}
	}
}
