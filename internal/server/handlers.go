package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/datamind-cli/internal/app"
	"github.com/KaramelBytes/datamind-cli/internal/dashboard"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v before committing the status so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(errorResponse{Error: "internal error"})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

const noDatasetMessage = "no dataset loaded"

// maxPage bounds the page query parameter.
const maxPage = 1 << 30

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// Upload ingests the multipart field "file".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	snap, err := h.svc.IngestReader(r.Context(), header.Filename, file)
	if err != nil {
		var ie *app.IngestError
		if errors.As(err, &ie) {
			writeError(w, http.StatusUnprocessableEntity, ie.Error())
			return
		}
		h.log.Error("upload", "file", header.Filename, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.svc.Current(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, noDatasetMessage)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.svc.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.svc.Current(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, noDatasetMessage)
		return
	}
	writeJSON(w, http.StatusOK, snap.Indicators)
}

func (h *Handler) GetCharts(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.svc.Current(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, noDatasetMessage)
		return
	}
	charts := snap.Charts
	if charts == nil {
		charts = []dashboard.Chart{}
	}
	writeJSON(w, http.StatusOK, charts)
}

func (h *Handler) GetColumns(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.svc.Current(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, noDatasetMessage)
		return
	}
	writeJSON(w, http.StatusOK, snap.Dataset.Columns)
}

// GetRows serves one filtered grid page: ?column=&q=&page=&size=.
func (h *Handler) GetRows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), 0)
	if err != nil || page < 0 || page > maxPage {
		writeError(w, http.StatusBadRequest, "page must be an integer between 0 and 1073741824")
		return
	}
	size, err := intParam(q.Get("size"), h.pageSize)
	if err != nil || size < 0 {
		writeError(w, http.StatusBadRequest, "size must be a non-negative integer")
		return
	}

	res, err := h.svc.Rows(r.Context(), app.RowsQuery{
		Column: q.Get("column"),
		Query:  q.Get("q"),
		Page:   page,
		Size:   size,
	})
	switch {
	case errors.Is(err, app.ErrNoDataset):
		writeError(w, http.StatusNotFound, noDatasetMessage)
	case errors.Is(err, app.ErrUnknownColumn):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		h.log.Error("rows", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *Handler) PostInsights(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.svc.Insights(r.Context())
	if errors.Is(err, app.ErrNoDataset) {
		writeError(w, http.StatusNotFound, noDatasetMessage)
		return
	}
	if err != nil {
		h.log.Error("insights", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
