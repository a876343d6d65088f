package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hampuff/internal/command"
	platformmw "hampuff/internal/platform/middleware"
	"hampuff/internal/propagation"
	regsvc "hampuff/internal/registration/service"
	"hampuff/internal/response"
)

func (h *Handler) handleHelpText(w http.ResponseWriter, r *http.Request) {
	h.core.CountMessage("text", command.KindHelp)
	response.WritePlain(w, http.StatusOK, h.core.HelpText())
}

func (h *Handler) handlePropagationText(w http.ResponseWriter, r *http.Request) {
	h.core.CountMessage("text", command.KindPropagation)

	tz, ok := propagation.ParseTimezone(chi.URLParam(r, "tz"))
	if !ok {
		// Mirrors the SMS behavior: a bad timezone is corrected, not
		// treated as a server error.
		response.WritePlain(w, http.StatusOK, command.TimezoneHint())
		return
	}

	text, err := h.core.Lookup(r.Context(), tz)
	if err != nil {
		response.WritePlainError(w, err)
		return
	}
	response.WritePlain(w, http.StatusOK, text)
}

func (h *Handler) handleRegisterText(w http.ResponseWriter, r *http.Request) {
	h.core.CountMessage("text", command.KindRegister)

	params, err := registerParamsFromForm(r)
	if err != nil {
		response.WritePlainError(w, err)
		return
	}

	rec, created, err := h.registrations.Register(r.Context(), params)
	if err != nil {
		response.WritePlainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.WritePlain(w, status, fmt.Sprintf(
		"Registration saved for %s (%s). Opted in: %s.",
		rec.CallSign, rec.PhoneCanonical, yesNo(rec.OptedIn)))
}

func (h *Handler) handleOptInText(w http.ResponseWriter, r *http.Request) {
	h.core.CountMessage("text", command.KindOptIn)

	rec, err := h.registrations.OptIn(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		response.WritePlainError(w, err)
		return
	}
	response.WritePlain(w, http.StatusOK,
		fmt.Sprintf("%s is opted in to Hampuff SMS.", rec.PhoneCanonical))
}

func (h *Handler) handleOptOutText(w http.ResponseWriter, r *http.Request) {
	h.core.CountMessage("text", command.KindOptOut)

	_, _, err := h.registrations.OptOut(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		response.WritePlainError(w, err)
		return
	}
	// Unknown numbers land here too: the goal state already holds.
	response.WritePlain(w, http.StatusOK, "You are opted out of Hampuff SMS.")
}

// registerParamsFromForm reads the registration form fields shared by the
// text surface and the JSON surface's form fallback.
func registerParamsFromForm(r *http.Request) (regsvc.RegisterParams, error) {
	if err := r.ParseForm(); err != nil {
		return regsvc.RegisterParams{}, err
	}
	return regsvc.RegisterParams{
		FullName:  r.PostFormValue("full_name"),
		CallSign:  r.PostFormValue("call_sign"),
		PhoneRaw:  r.PostFormValue("phone_number"),
		OptedIn:   parseBool(r.PostFormValue("opted_in")),
		SourceIP:  platformmw.GetClientIP(r.Context()),
		UserAgent: r.UserAgent(),
	}, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
