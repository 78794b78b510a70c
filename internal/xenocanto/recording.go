package xenocanto

import (
	"fmt"
	"strings"
)

// Recording is one entry of the recordings array. Only the fields the quiz
// reads are decoded.
type Recording struct {
	ID        string    `json:"id"`
	Recordist string    `json:"rec"`
	AudioURL  string    `json:"file"`
	Sono      Sonograms `json:"sono"`
	License   string    `json:"lic"`
	English   string    `json:"en,omitempty"`
	Genus     string    `json:"gen,omitempty"`
	Species   string    `json:"sp,omitempty"`
	Quality   string    `json:"q,omitempty"`
	Length    string    `json:"length,omitempty"`
}

type Sonograms struct {
	Small string `json:"small,omitempty"`
	Med   string `json:"med,omitempty"`
	Large string `json:"large"`
	Full  string `json:"full,omitempty"`
}

// Page is one page of recordings for a query. Treated as immutable once
// fetched.
type Page struct {
	Query      string
	Number     int
	NumPages   int
	Recordings []Recording
}

func (p Page) Len() int { return len(p.Recordings) }

// SpectrogramURL is the image shown as a quiz choice.
func (r Recording) SpectrogramURL() string { return normalizeURL(r.Sono.Large) }

func (r Recording) Audio() string { return normalizeURL(r.AudioURL) }

func (r Recording) LicenseURL() string { return normalizeURL(r.License) }

// AccessURL is the public page of the recording.
func (r Recording) AccessURL() string {
	return "https://xeno-canto.org/" + strings.TrimSpace(r.ID)
}

// Validate reports the first required field that is missing.
func (r Recording) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"file", r.AudioURL},
		{"sono.large", r.Sono.Large},
		{"rec", r.Recordist},
		{"id", r.ID},
		{"lic", r.License},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &MalformedRecordingError{ID: r.ID, Field: f.name}
		}
	}
	return nil
}

// Citation formats the attribution line: recordist, external id, access URL
// and license.
func (r Recording) Citation() string {
	return fmt.Sprintf("%s, XC%s. Accessible at %s. %s",
		strings.TrimSpace(r.Recordist),
		strings.TrimSpace(r.ID),
		r.AccessURL(),
		r.LicenseURL(),
	)
}

// xeno-canto hands out protocol-relative URLs ("//xeno-canto.org/...").
func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
