package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/r2x-tools/reedsmap/internal/harmonize"
	"github.com/r2x-tools/reedsmap/internal/logging"
	"github.com/r2x-tools/reedsmap/internal/mapping"
	"github.com/r2x-tools/reedsmap/internal/store"
)

// maxValidateBody bounds mapping documents submitted to /api/validate.
const maxValidateBody = 10 << 20

// datasetSummary is the list representation of one catalog entry.
type datasetSummary struct {
	Key      string `json:"key"`
	Fname    string `json:"fname"`
	Input    bool   `json:"input"`
	Required bool   `json:"required"`
	Units    string `json:"units,omitempty"`
}

// handleHealth reports liveness plus the catalog size.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"datasets": s.registry.Count(),
		"active":   s.limiter.Active(),
	})
}

// handleListDatasets returns the catalog, optionally filtered by kind
// (?kind=input|output) or requiredness (?required=true).
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	var keys []string
	switch kind := r.URL.Query().Get("kind"); kind {
	case "":
		keys = s.registry.Keys()
	case "input":
		keys = s.registry.Inputs()
	case "output":
		keys = s.registry.Outputs()
	default:
		s.respondError(w, r, fmt.Errorf("unknown kind %q", kind), http.StatusBadRequest)
		return
	}

	requiredOnly := r.URL.Query().Get("required") == "true"

	summaries := make([]datasetSummary, 0, len(keys))
	for _, key := range keys {
		entry, ok := s.registry.Lookup(key)
		if !ok {
			continue
		}
		if requiredOnly && !entry.IsRequired() {
			continue
		}
		summaries = append(summaries, datasetSummary{
			Key:      key,
			Fname:    entry.Fname,
			Input:    entry.Input,
			Required: entry.IsRequired(),
			Units:    entry.Units,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(summaries),
		"datasets": summaries,
	})
}

// handleGetDataset returns the full mapping entry for one dataset.
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	entry, ok := s.registry.Lookup(key)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", ErrDatasetNotFound, key), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Key string `json:"key"`
		mapping.Entry
	}{Key: key, Entry: entry})
}

// handleDatasetColumns returns the source and canonical column names of a
// dataset's column mapping.
func (s *Server) handleDatasetColumns(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	entry, ok := s.registry.Lookup(key)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", ErrDatasetNotFound, key), http.StatusNotFound)
		return
	}

	source := make([]string, 0, len(entry.ColumnMapping))
	for col := range entry.ColumnMapping {
		source = append(source, col)
	}
	sort.Strings(source)

	respondJSON(w, http.StatusOK, map[string]any{
		"key":            key,
		"source_columns": source,
		"target_columns": entry.TargetColumns(),
		"declared":       entry.Columns,
	})
}

// handleValidate checks a posted mapping document against the entry schema
// and the structural rules. Problems in the document come back in the report
// with a 200; only an unreadable document is a client error.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxValidateBody))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", ErrFileTooLarge, err), http.StatusRequestEntityTooLarge)
		return
	}

	report, err := mapping.Check(body, s.schema)
	if err != nil {
		metricValidations.WithLabelValues("malformed").Inc()
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	result := "clean"
	if !report.OK() {
		result = "issues"
	}
	metricValidations.WithLabelValues(result).Inc()

	respondJSON(w, http.StatusOK, map[string]any{
		"ok":      report.OK(),
		"entries": report.Entries,
		"issues":  report.Issues,
	})
}

// handleHarmonize streams an uploaded ReEDS CSV through the dataset's column
// mapping and returns the harmonized CSV. Accepts either a multipart form
// with a "file" field or a raw CSV body.
func (s *Server) handleHarmonize(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	entry, ok := s.registry.Lookup(key)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", ErrDatasetNotFound, key), http.StatusNotFound)
		return
	}
	if err := harmonize.Harmonizable(entry); err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		status := http.StatusServiceUnavailable
		if r.Context().Err() != nil {
			status = http.StatusRequestTimeout
		}
		s.respondError(w, r, err, status)
		return
	}
	defer s.limiter.Release()

	body, closeBody, err := s.uploadBody(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	defer closeBody()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Harmonize.Timeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+key+`.csv"`)

	sink := &countWriter{w: w}
	result, err := harmonize.CSV(ctx, key, entry, body, sink)
	if err != nil {
		metricHarmonizeRuns.WithLabelValues(key, "error").Inc()
		if sink.n == 0 {
			status := http.StatusBadRequest
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				status = http.StatusRequestEntityTooLarge
			}
			s.respondError(w, r, err, status)
			return
		}
		// Output already started, so the 200 and part of the body are on the
		// wire. Abort the connection: a broken stream is detectable by the
		// client, a cleanly terminated truncated CSV is not.
		logging.FromContext(r.Context()).Error("harmonization aborted mid-stream",
			"dataset", key, "error", err)
		panic(http.ErrAbortHandler)
	}

	metricHarmonizeRuns.WithLabelValues(key, "ok").Inc()
	metricHarmonizeDuration.Observe(result.Duration.Seconds())
	metricHarmonizeRows.Add(float64(result.Rows))

	logging.FromContext(r.Context()).Info("harmonization completed",
		"run_id", result.RunID,
		"dataset", key,
		"rows", result.Rows,
		"bytes", result.BytesRead,
		"unmapped", len(result.Unmapped),
	)

	if err := s.runs.RecordRun(r.Context(), store.Run{
		ID:        result.RunID,
		Dataset:   key,
		Fname:     result.Fname,
		Rows:      int64(result.Rows),
		BytesRead: result.BytesRead,
		Unmapped:  result.Unmapped,
		Duration:  result.Duration,
	}); err != nil {
		logging.FromContext(r.Context()).Error("failed to record run",
			"run_id", result.RunID, "error", err)
	}
}

// handleListRuns returns recent harmonization runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, r, fmt.Errorf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.runs.RecentRuns(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(runs),
		"runs":  runs,
	})
}

// uploadBody returns the CSV payload of a harmonize request, honoring the
// configured size limit. Multipart forms use the "file" field; anything else
// is treated as a raw CSV body.
func (s *Server) uploadBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Harmonize.MaxFileSize)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, nil, fmt.Errorf("read multipart file: %w", err)
		}
		if header.Size > s.cfg.Harmonize.MaxFileSize {
			file.Close()
			return nil, nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, header.Size)
		}
		return file, func() { file.Close() }, nil
	}

	return r.Body, func() {}, nil
}

// countWriter counts bytes written, so an error path can tell whether the
// response stream already started.
type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
