package utils

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
	Count       *int   `json:"count,omitempty"`
	Total       *int64 `json:"total,omitempty"`
	Pages       *int64 `json:"pages,omitempty"`
	CurrentPage *int64 `json:"currentPage,omitempty"`
	Data        any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteList writes an unpaginated collection with its count.
func WriteList(w http.ResponseWriter, data any, count int) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

// WritePage writes one page of a collection with the pagination fields.
func WritePage(w http.ResponseWriter, data any, count int, total int64, p Pagination) {
	pages := p.Pages(total)
	page := p.Page
	WriteJSON(w, http.StatusOK, Envelope{
		Success:     true,
		Count:       &count,
		Total:       &total,
		Pages:       &pages,
		CurrentPage: &page,
		Data:        data,
	})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Error: message})
}
