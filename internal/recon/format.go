package recon

import (
	"strings"
	"time"

	"github.com/carelink/carelink/internal/platform/docstore"
)

// Sentinel copy rendered when no usable value can be resolved. Rendering
// code relies on these never being empty.
const (
	UnknownDoctor  = "Unknown Doctor"
	UnknownPatient = "Unknown Patient"
	NotSpecified   = "Not specified"
)

// FullName composes a display name from whichever naming convention the
// record uses: a single name field, firstName/lastName (camel or snake
// case), role-prefixed variants, then first name alone.
func FullName(record docstore.Document, fallback string) string {
	if record == nil {
		return fallback
	}
	if name := Resolve(record, []string{"name", "fullName", "displayName"}, ""); name != "" {
		return name
	}

	conventions := []struct{ first, middle, last string }{
		{"firstName", "middleName", "lastName"},
		{"first_name", "middle_name", "last_name"},
		{"patientFirstName", "patientMiddleName", "patientLastName"},
		{"profile.firstName", "profile.middleName", "profile.lastName"},
	}
	for _, c := range conventions {
		first := Resolve(record, []string{c.first}, "")
		last := Resolve(record, []string{c.last}, "")
		if first == "" || last == "" {
			continue
		}
		parts := []string{first}
		if middle := Resolve(record, []string{c.middle}, ""); middle != "" {
			parts = append(parts, middle)
		}
		parts = append(parts, last)
		return strings.Join(parts, " ")
	}

	if first := Resolve(record, []string{"firstName", "first_name", "patientFirstName", "profile.firstName"}, ""); first != "" {
		return first
	}
	return fallback
}

// ClinicAddress joins the address parts that are present. A composed
// address is never empty: it falls back through the parts, then
// addressLine, then the clinic name, then the caller's fallback.
func ClinicAddress(clinic docstore.Document, fallbackName string) string {
	if clinic == nil {
		return fallbackName
	}
	var parts []string
	for _, key := range []string{"address", "city", "province", "zipCode"} {
		if p := Resolve(clinic, []string{key}, ""); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return Resolve(clinic, []string{"addressLine", "name"}, fallbackName)
}

// ClinicAndAddress renders "{name}, {address}" unless the address already
// is, or contains, the clinic name, in which case the address alone is
// returned to avoid duplicating it.
func ClinicAndAddress(clinic docstore.Document, fallbackName string) string {
	address := ClinicAddress(clinic, fallbackName)
	name := Resolve(clinic, []string{"name"}, "")
	if name == "" || strings.Contains(address, name) {
		return address
	}
	return name + ", " + address
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006", "January 2, 2006"}
var timeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM"}

// DateTime renders an appointment date and time as "{date} at {time}",
// with each part formatted independently (long date, 12-hour clock). A
// part that cannot be parsed is rendered as received; when neither part is
// present the result is "Not specified".
func DateTime(date, timeOfDay string) string {
	d := formatPart(strings.TrimSpace(date), dateLayouts, "January 2, 2006")
	t := formatPart(strings.TrimSpace(timeOfDay), timeLayouts, "3:04 PM")
	switch {
	case d != "" && t != "":
		return d + " at " + t
	case d != "":
		return d
	case t != "":
		return t
	default:
		return NotSpecified
	}
}

func formatPart(raw string, layouts []string, out string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format(out)
		}
	}
	return raw
}

// DoctorName normalizes a provider display name to carry exactly one
// "Dr. " prefix, whatever mix of "dr", "Dr." or bare names upstream data
// holds. Empty or unknown input renders the sentinel, which passes through
// unchanged so the function is idempotent.
func DoctorName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == UnknownDoctor {
		return UnknownDoctor
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "dr.") {
		trimmed = strings.TrimSpace(trimmed[3:])
	} else if strings.HasPrefix(lower, "dr ") {
		trimmed = strings.TrimSpace(trimmed[3:])
	} else if lower == "dr" {
		trimmed = ""
	}
	if trimmed == "" || trimmed == UnknownDoctor {
		return UnknownDoctor
	}
	return "Dr. " + trimmed
}
