// Package response renders handler outcomes for the three delivery
// surfaces: telephony markup (TwiML), plain text, and JSON. The TwiML and
// plain renderings carry identical text; JSON wraps the same content in a
// status/error envelope. Everything here is a pure projection.
package response

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"

	"hampuff/pkg/domainerrors"
)

// TwiML is the telephony provider's reply markup.
type TwiML struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// RenderTwiML produces the provider markup for a message body.
func RenderTwiML(text string) ([]byte, error) {
	body, err := xml.Marshal(TwiML{Message: text})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// WriteTwiML writes the TwiML rendering of text. The SMS channel always
// answers 200: errors became friendly message text before reaching here.
func WriteTwiML(w http.ResponseWriter, text string) {
	body, err := RenderTwiML(text)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// WritePlain writes text with the given status.
func WritePlain(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintln(w, text)
}

// WritePlainError maps a domain error to its status and writes the message
// as plain text.
func WritePlainError(w http.ResponseWriter, err error) {
	code := domainerrors.CodeOf(err)
	WritePlain(w, domainerrors.ToHTTPStatus(code), domainerrors.MessageOf(err))
}

// WriteJSON writes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteJSONOK wraps fields in the success envelope.
func WriteJSONOK(w http.ResponseWriter, status int, fields map[string]any) {
	payload := map[string]any{"status": "ok"}
	for k, v := range fields {
		payload[k] = v
	}
	WriteJSON(w, status, payload)
}

// WriteJSONError centralizes domain error translation so every endpoint
// reports the same envelope.
func WriteJSONError(w http.ResponseWriter, err error) {
	code := domainerrors.CodeOf(err)
	WriteJSON(w, domainerrors.ToHTTPStatus(code), map[string]string{
		"error":   string(code),
		"message": domainerrors.MessageOf(err),
	})
}
