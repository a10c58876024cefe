package common

import (
	"encoding/json"
	"net/http"

	"github.com/AlexZinkM/keyderive/internal/model"
)

// WriteJSON writes v as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a model.ErrorResponse with the given status
func WriteError(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, model.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
