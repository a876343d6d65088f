package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hampuff/internal/command"
	platformmw "hampuff/internal/platform/middleware"
	"hampuff/internal/propagation"
	regsvc "hampuff/internal/registration/service"
	"hampuff/internal/response"
	"hampuff/pkg/domainerrors"
)

func (h *Handler) handleHelpJSON(w http.ResponseWriter, r *http.Request) {
	h.core.CountMessage("json", command.KindHelp)
	response.WriteJSONOK(w, http.StatusOK, map[string]any{
		"message": h.core.HelpText(),
	})
}

func (h *Handler) handlePropagationJSON(w http.ResponseWriter, r *http.Request) {
	h.core.CountMessage("json", command.KindPropagation)

	tz, ok := propagation.ParseTimezone(chi.URLParam(r, "tz"))
	if !ok {
		response.WriteJSONError(w, domainerrors.New(domainerrors.CodeValidation, command.TimezoneHint()))
		return
	}

	report, text, err := h.core.LookupReport(r.Context(), tz)
	if err != nil {
		response.WriteJSONError(w, err)
		return
	}
	response.WriteJSONOK(w, http.StatusOK, map[string]any{
		"timezone": tz.Token,
		"report":   report,
		"message":  text,
	})
}

type registerRequest struct {
	FullName    string `json:"full_name"`
	CallSign    string `json:"call_sign"`
	PhoneNumber string `json:"phone_number"`
	OptedIn     bool   `json:"opted_in"`
}

func (h *Handler) handleRegisterJSON(w http.ResponseWriter, r *http.Request) {
	h.core.CountMessage("json", command.KindRegister)

	params, err := h.registerParams(r)
	if err != nil {
		response.WriteJSONError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}

	rec, created, err := h.registrations.Register(r.Context(), params)
	if err != nil {
		response.WriteJSONError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.WriteJSONOK(w, status, map[string]any{"registration": rec})
}

// registerParams accepts a JSON body or falls back to form encoding.
func (h *Handler) registerParams(r *http.Request) (regsvc.RegisterParams, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return regsvc.RegisterParams{}, err
		}
		return regsvc.RegisterParams{
			FullName:  req.FullName,
			CallSign:  req.CallSign,
			PhoneRaw:  req.PhoneNumber,
			OptedIn:   req.OptedIn,
			SourceIP:  platformmw.GetClientIP(r.Context()),
			UserAgent: r.UserAgent(),
		}, nil
	}
	return registerParamsFromForm(r)
}

func (h *Handler) handleOptInJSON(w http.ResponseWriter, r *http.Request) {
	h.core.CountMessage("json", command.KindOptIn)

	rec, err := h.registrations.OptIn(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		response.WriteJSONError(w, err)
		return
	}
	response.WriteJSONOK(w, http.StatusOK, map[string]any{"registration": rec})
}

func (h *Handler) handleOptOutJSON(w http.ResponseWriter, r *http.Request) {
	h.core.CountMessage("json", command.KindOptOut)

	rec, existed, err := h.registrations.OptOut(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		response.WriteJSONError(w, err)
		return
	}

	fields := map[string]any{"message": "opted out"}
	if existed {
		fields["registration"] = rec
	}
	response.WriteJSONOK(w, http.StatusOK, fields)
}
