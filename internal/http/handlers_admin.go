package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"findash/internal/log"
	"findash/internal/services"
	"findash/internal/sources"
)

const readOnlyMessage = "Admin operations require a writable backend (sqlite, postgres or memory)"

func (s *Server) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	if s.admin == nil || !s.admin.Writable() {
		writeError(w, r, http.StatusBadRequest, readOnlyMessage)
		return
	}
	if err := s.admin.Reset(r.Context()); err != nil {
		s.writeAdminError(w, r, err, log.OpReset)
		return
	}
	writeJSON(w, r, http.StatusOK, AdminResponse{
		Status:  StatusSuccess,
		Message: "Database tables reset successfully",
	})
}

// handleMigrateCSV imports an uploaded export. replace=true resets the store
// first; otherwise a non-empty store is refused.
func (s *Server) handleMigrateCSV(w http.ResponseWriter, r *http.Request) {
	if s.admin == nil || !s.admin.Writable() {
		writeError(w, r, http.StatusBadRequest, readOnlyMessage)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, r, http.StatusBadRequest, "File must be a CSV")
		return
	}

	replace, _ := strconv.ParseBool(r.URL.Query().Get("replace"))
	res, err := s.admin.ImportCSV(r.Context(), file, replace)
	if err != nil {
		s.writeAdminError(w, r, err, log.OpImport)
		return
	}

	total := res.TotalCount
	writeJSON(w, r, http.StatusOK, AdminResponse{
		Status:     StatusSuccess,
		Message:    fmt.Sprintf("Successfully imported %d transactions", res.Inserted),
		TotalCount: &total,
	})
}

func (s *Server) writeAdminError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, sources.ErrReadOnly):
		writeError(w, r, http.StatusBadRequest, readOnlyMessage)
	case errors.Is(err, services.ErrDataExists):
		writeError(w, r, http.StatusConflict, "Database already contains data. Reset it first or pass replace=true.")
	case errors.Is(err, services.ErrInvalidCSV):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Admin operation failed",
			log.FieldOperation, op, log.Err(err))
		writeError(w, r, http.StatusInternalServerError, "Admin operation failed")
	}
}
