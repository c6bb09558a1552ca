package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/projecthelena/healthlog/internal/db"
)

// RecordStore is the storage the record endpoints need. *db.Store
// satisfies it.
type RecordStore interface {
	ListRecords(ctx context.Context) ([]db.Record, error)
	CreateRecord(ctx context.Context, message string) (db.Record, error)
	UpdateRecord(ctx context.Context, id int64, message string) (db.Record, error)
	DeleteRecord(ctx context.Context, id int64) (db.Record, error)
	Now(ctx context.Context) (time.Time, error)
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type RecordHandler struct {
	store  RecordStore
	logger *log.Logger
}

func NewRecordHandler(store RecordStore) *RecordHandler {
	return &RecordHandler{store: store, logger: newAPILogger()}
}

type messageRequest struct {
	Message string `json:"message"`
}

// decodeMessage reads {"message": "..."} and rejects an absent or empty
// message.
func decodeMessage(w http.ResponseWriter, r *http.Request) (string, error) {
	var req messageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", invalid(msgInvalidBody)
	}
	if req.Message == "" {
		return "", invalid(msgMessageRequired)
	}
	return req.Message, nil
}

// recordID parses the {id} path segment. Anything that is not an integer
// cannot name a row, so it is reported as not found.
func recordID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, db.ErrNotFound
	}
	return id, nil
}

// ListRecords returns every record ordered by id.
// @Summary      List records
// @Tags         records
// @Produce      json
// @Success      200  {array}  db.Record
// @Failure      500  {object} object{error=string} "Database error"
// @Router       /health [get]
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListRecords(r.Context())
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// CreateRecord stores a new message.
// @Summary      Create record
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        body body object{message=string} true "Record payload"
// @Success      201  {object} db.Record
// @Failure      400  {object} object{error=string} "Message is required"
// @Failure      500  {object} object{error=string} "Database error"
// @Router       /health [post]
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	message, err := decodeMessage(w, r)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}

	record, err := h.store.CreateRecord(r.Context(), message)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// UpdateRecord replaces the message of an existing record.
// @Summary      Update record
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        id   path int true "Record ID"
// @Param        body body object{message=string} true "New message"
// @Success      200  {object} db.Record
// @Failure      400  {object} object{error=string} "Message is required"
// @Failure      404  {object} object{error=string} "Message not found"
// @Failure      500  {object} object{error=string} "Database error"
// @Router       /health/{id} [put]
func (h *RecordHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	message, err := decodeMessage(w, r)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	id, err := recordID(r)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}

	record, err := h.store.UpdateRecord(r.Context(), id, message)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// DeleteRecord removes a record and echoes it back.
// @Summary      Delete record
// @Tags         records
// @Produce      json
// @Param        id   path int true "Record ID"
// @Success      200  {object} object{deleted=db.Record}
// @Failure      404  {object} object{error=string} "Message not found"
// @Failure      500  {object} object{error=string} "Database error"
// @Router       /health/{id} [delete]
func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}

	record, err := h.store.DeleteRecord(r.Context(), id)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]db.Record{"deleted": record})
}
