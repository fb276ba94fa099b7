package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zombor/nfce-extractor/internal/reading"
)

// ExportFilename is the attachment name of a workbook download
const ExportFilename = "dados_extraidos.xlsx"

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeServiceError maps service errors onto HTTP status codes
func writeServiceError(w http.ResponseWriter, err error, msg string, args ...any) {
	switch {
	case errors.Is(err, ErrRunNotFound):
		writeError(w, http.StatusNotFound, "Run not found")
	case errors.Is(err, ErrReceiptNotFound):
		writeError(w, http.StatusNotFound, "Document not found")
	default:
		slog.Error(msg, append(args, "error", err)...)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// handleHealth reports that the server is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListRuns returns the listing view of all runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns()
	if err != nil {
		writeServiceError(w, err, "Error listing runs")
		return
	}

	infos := make([]RunInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, run.Info())
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleCreateRun accepts one or more receipts in the "files" field and runs the extraction
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload is too large. Maximum size is %d MB.", s.maxUploadBytes>>20))
			return
		}
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No file was selected. Please choose at least one NFC-e PDF.")
		return
	}

	uploads := make([]Upload, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			slog.Error("Error opening uploaded file", "error", err, "filename", header.Filename)
			writeError(w, http.StatusBadRequest, "Error reading file. Please try again.")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Error("Error reading file data", "error", err, "filename", header.Filename)
			writeError(w, http.StatusBadRequest, "Error reading file. Please try again.")
			return
		}
		uploads = append(uploads, Upload{
			Filename:    header.Filename,
			ContentType: reading.ContentTypeFor(header.Filename, header.Header.Get("Content-Type")),
			Data:        data,
		})
	}

	run, err := s.service.ProcessUploads(r.Context(), uploads)
	if err != nil {
		if errors.Is(err, ErrNoFiles) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeServiceError(w, err, "Error processing run", "files", len(uploads))
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

// handleGetRun returns a run with all its rows
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, err := s.service.GetRun(id)
	if err != nil {
		writeServiceError(w, err, "Error getting run", "id", id)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleDeleteRun deletes a run and its stored receipts
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteRun(id); err != nil {
		writeServiceError(w, err, "Error deleting run", "id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetSummary returns the statistics of a run
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	summary, err := s.service.Summary(id)
	if err != nil {
		writeServiceError(w, err, "Error summarizing run", "id", id)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleExport streams the run as an XLSX workbook
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Buffer so a failed export can still be reported with a status code
	var buf bytes.Buffer
	if err := s.service.Export(id, &buf); err != nil {
		writeServiceError(w, err, "Error exporting run", "id", id)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Error writing export", "id", id, "error", err)
	}
}

// handleGetReceiptFile serves a stored source document
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document index")
		return
	}

	data, contentType, err := s.service.GetReceiptFile(id, index)
	if err != nil {
		writeServiceError(w, err, "Error getting receipt file", "id", id, "index", index)
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Error("Error writing file", "id", id, "error", err)
	}
}
