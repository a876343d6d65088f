package propagation

import (
	"fmt"
	"time"
)

// Report holds the structured propagation figures returned by the solar
// data source. This system renders them verbatim; it never computes them.
type Report struct {
	Updated   time.Time `json:"updated"`
	SolarFlux string    `json:"solar_flux"`
	AIndex    string    `json:"a_index"`
	KIndex    string    `json:"k_index"`
	Sunspots  string    `json:"sunspots"`
	MUF       string    `json:"muf"`
	XRay      string    `json:"xray"`
	SolarWind string    `json:"solar_wind"`
}

const updatedLayout = "Mon 02 Jan 15:04"

// Format renders the report as the SMS/plain-text body for the given
// display timezone.
func (r Report) Format(tz Timezone) string {
	return fmt.Sprintf(
		"[Hampuff - %s] Updated: %s\n"+
			"\tSolar Flux  = %s\n"+
			"\tA Index     = %s\n"+
			"\tK Index     = %s\n"+
			"\tSunspot #   = %s\n"+
			"\tMUF         = %s\n"+
			"\tXRay        = %s\n"+
			"\tSolar Winds = %s",
		tz.Token, r.Updated.In(tz.Loc).Format(updatedLayout),
		orNA(r.SolarFlux), orNA(r.AIndex), orNA(r.KIndex),
		orNA(r.Sunspots), orNA(r.MUF), orNA(r.XRay), orNA(r.SolarWind),
	)
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
