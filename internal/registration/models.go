package registration

import "time"

// Record is one phone number's registration. PhoneCanonical is the sole
// identity key: uniqueness is enforced on the canonical form, never the raw
// submission. Records are never deleted; opt-out only clears OptedIn.
type Record struct {
	ID             string    `json:"id"`
	FullName       string    `json:"full_name"`
	CallSign       string    `json:"call_sign"`
	PhoneRaw       string    `json:"phone_raw"`
	PhoneCanonical string    `json:"phone_canonical"`
	OptedIn        bool      `json:"opted_in"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	SourceIP       string    `json:"source_ip,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
}

// Summary is the administrative listing: all records newest first plus
// aggregate counts.
type Summary struct {
	Records []Record `json:"registrations"`
	Total   int      `json:"total"`
	OptedIn int      `json:"opted_in"`
}
