package handler

import (
	"encoding/json"
	"log"
	"net/http"
)

// respondJSON writes v as a JSON response body
func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondCreated writes v as a 201 JSON response. The content type must be
// set before the status line goes out or it is dropped.
func respondCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// statusResponse is the envelope for operations with no payload
type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondStatus(w http.ResponseWriter, message string) {
	respondJSON(w, statusResponse{Success: true, Message: message})
}
