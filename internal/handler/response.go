package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/udistrital/auditoria_mid/internal/model"
)

// respondWithEnvelope writes an APIResponse body with the matching HTTP
// status code, so clients see the same outcome in both places.
func respondWithEnvelope(w http.ResponseWriter, envelope *model.APIResponse) {
	respondWithJSON(w, envelope.Code, envelope)
}

// respondWithError is used for failures outside the envelope contract
// (auth, method mismatch).
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal JSON response: %v", payload)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
