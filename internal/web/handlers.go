package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cardforge/cardforge/internal/archive"
	"github.com/cardforge/cardforge/internal/logging"
	"github.com/cardforge/cardforge/internal/pipeline"
	"github.com/cardforge/cardforge/internal/record"
	"github.com/cardforge/cardforge/internal/schema"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"tables": s.registry.All()})
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	table, ok := s.lookupTable(w, r)
	if !ok {
		return
	}
	writeJSON(w, table)
}

// handleImport accepts a multipart form with a "file" part holding the
// tabular upload and, per image field, an optional "photos_zip_<field>"
// part holding its photo archive. A table with a single image field may
// send the archive as plain "photos_zip".
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	table, ok := s.lookupTable(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	tabularData, err := readFormFile(r, "file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file provided")
		return
	}

	archives, err := readArchives(r, table)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.pipeline.Import(r.Context(), table, tabularData, archives)
	if err != nil {
		var dup *pipeline.DuplicateError
		if errors.As(err, &dup) {
			writeJSONStatus(w, http.StatusUnprocessableEntity, map[string]any{
				"error":     "duplicate image identifiers",
				"conflicts": dup.Conflicts,
			})
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	logging.WithFields(r.Context(), "table", table.ID).Info("import finished",
		"records_created", result.RecordsCreated,
		"photos_matched", result.PhotosMatched,
		"row_errors", result.ErrorCount,
	)
	writeJSON(w, result)
}

// handleReupload accepts a multipart form with an "archive" part and an
// optional "ids" value selecting the records to resync.
func (s *Server) handleReupload(w http.ResponseWriter, r *http.Request) {
	table, ok := s.lookupTable(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	archiveData, err := readFormFile(r, "archive")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no archive provided")
		return
	}

	ids, err := parseIDs(r.FormValue("ids"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.pipeline.Reupload(r.Context(), table, archiveData, ids)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	logging.WithFields(r.Context(), "table", table.ID).Info("reupload finished",
		"images_matched", result.ImagesMatched,
		"cards_updated", result.CardsUpdated,
		"invalid_images", result.InvalidImages,
	)
	writeJSON(w, result)
}

func (s *Server) handleExportTabular(w http.ResponseWriter, r *http.Request) {
	table, ok := s.lookupTable(w, r)
	if !ok {
		return
	}
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	artifact, err := s.pipeline.ExportTabular(r.Context(), table, ids)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeAttachment(w, artifact.Name, xlsxContentType, artifact.Data)
}

// handleExportImages streams one zip per image field; multiple fields
// are bundled into a single outer zip.
func (s *Server) handleExportImages(w http.ResponseWriter, r *http.Request) {
	table, ok := s.lookupTable(w, r)
	if !ok {
		return
	}
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	artifacts, err := s.pipeline.ExportImages(r.Context(), table, ids)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(artifacts) == 0 {
		writeError(w, r, http.StatusNotFound, "no exportable images in the selection")
		return
	}
	if len(artifacts) == 1 {
		writeAttachment(w, artifacts[0].Name, "application/zip", artifacts[0].Data)
		return
	}

	var buf bytes.Buffer
	zw := archive.NewWriter(&buf)
	for _, a := range artifacts {
		if err := zw.Add(a.Name, a.Data); err != nil {
			zw.Close()
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if err := zw.Close(); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	name := fmt.Sprintf("%s_images_%s.zip", table.ID, time.Now().Format("20060102_150405"))
	writeAttachment(w, name, "application/zip", buf.Bytes())
}

func (s *Server) lookupTable(w http.ResponseWriter, r *http.Request) (schema.Table, bool) {
	id := chi.URLParam(r, "table")
	table, ok := s.registry.Get(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown table "+id)
		return schema.Table{}, false
	}
	return table, true
}

// readFormFile reads one uploaded part fully into memory.
func readFormFile(r *http.Request, name string) ([]byte, error) {
	file, _, err := r.FormFile(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// readArchives collects the photo archive for each image field.
func readArchives(r *http.Request, table schema.Table) (map[string][]byte, error) {
	imageFields := table.ImageFields()
	archives := make(map[string][]byte)

	for _, f := range imageFields {
		data, err := readFormFile(r, "photos_zip_"+f.Name)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read archive for %q: %w", f.Name, err)
		}
		archives[f.Name] = data
	}

	// A lone image field may receive its archive without the suffix.
	if len(archives) == 0 && len(imageFields) == 1 {
		data, err := readFormFile(r, "photos_zip")
		if err == nil {
			archives[imageFields[0].Name] = data
		} else if !errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("read archive: %w", err)
		}
	}
	return archives, nil
}

// parseIDs reads a comma-separated record id list; empty means "all".
func parseIDs(raw string) ([]uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := record.ParseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
