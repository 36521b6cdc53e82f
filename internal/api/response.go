package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Message is the JSON envelope of every error response.
type Message struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, status int, messageType, message string) {
	writeJSON(w, status, Message{
		Type:    messageType,
		Status:  strconv.Itoa(status),
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(body)
}

func badRequest(w http.ResponseWriter, message string) {
	writeMessage(w, http.StatusBadRequest, "badrequest", message)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
