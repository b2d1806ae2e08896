// internal/app/api/respond/respond.go

// Package respond writes every API response in the portal's uniform JSON
// envelope: {success, message?, data|pagination}. Handlers never call
// json.NewEncoder or pick status codes directly; they hand results and
// errors to this package so the wire shape stays identical across features.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Pagination reports the page window and filtered-set totals for list
// responses. Total is computed over the filtered set before the page window
// is applied, never over the page alone.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Envelope is the top-level JSON shape of every response.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Fields     []string    `json:"fields,omitempty"`
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Encoding an Envelope cannot fail for the types we put in it; a broken
	// connection is the client's problem at this point.
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a 200 success envelope with the given data.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 success envelope with the created record.
func Created(w http.ResponseWriter, data any) {
	write(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message writes a 200 success envelope carrying only a message.
func Message(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, Envelope{Success: true, Message: message})
}

// List writes a 200 success envelope with a page of records and its
// pagination block.
func List(w http.ResponseWriter, data any, p Pagination) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// Err converts err to the taxonomy, logs unexpected failures, and writes the
// failure envelope with the kind's fixed status code. Only the safe message
// reaches the caller; the underlying cause stays in the server log.
func Err(w http.ResponseWriter, logger *zap.Logger, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindServer && logger != nil {
		logger.Error("request failed", zap.Error(ae.Internal))
	}
	write(w, ae.Status(), Envelope{Success: false, Message: ae.Message, Fields: ae.Fields})
}
