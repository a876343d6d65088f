package api

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"hampuff/internal/registration"
	"hampuff/internal/response"
)

// adminRecord is a registration plus a readable client summary derived
// from the stored user agent.
type adminRecord struct {
	registration.Record
	Client string `json:"client,omitempty"`
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	summary, err := h.registrations.ListAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "admin listing failed", "error", err)
		response.WriteJSONError(w, err)
		return
	}

	records := make([]adminRecord, 0, len(summary.Records))
	for _, rec := range summary.Records {
		records = append(records, adminRecord{
			Record: rec,
			Client: clientSummary(rec.UserAgent),
		})
	}

	fields := map[string]any{
		"total":         summary.Total,
		"opted_in":      summary.OptedIn,
		"registrations": records,
	}
	if h.auditor != nil {
		fields["recent_audit"] = h.auditor.Recent()
	}
	response.WriteJSONOK(w, http.StatusOK, fields)
}

// clientSummary condenses a raw user agent into "Browser version / OS".
func clientSummary(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()

	parts := make([]string, 0, 2)
	if name != "" {
		parts = append(parts, strings.TrimSpace(name+" "+version))
	}
	if os := ua.OS(); os != "" {
		parts = append(parts, os)
	}
	if len(parts) == 0 {
		return raw
	}
	return strings.Join(parts, " / ")
}
