package recon

import (
	"testing"

	"github.com/carelink/carelink/internal/platform/docstore"
)

func TestFullNameConventions(t *testing.T) {
	tests := []struct {
		name   string
		record docstore.Document
		want   string
	}{
		{"single name field", docstore.Document{"name": "Jane Doe"}, "Jane Doe"},
		{"camel case", docstore.Document{"firstName": "Jane", "lastName": "Doe"}, "Jane Doe"},
		{"snake case", docstore.Document{"first_name": "Jane", "last_name": "Doe"}, "Jane Doe"},
		{"role prefixed", docstore.Document{"patientFirstName": "Jane", "patientLastName": "Doe"}, "Jane Doe"},
		{"with middle", docstore.Document{"firstName": "Jane", "middleName": "Q", "lastName": "Doe"}, "Jane Q Doe"},
		{"nested profile", docstore.Document{"profile": map[string]interface{}{"firstName": "Jane", "lastName": "Doe"}}, "Jane Doe"},
		{"first only", docstore.Document{"firstName": "Jane"}, "Jane"},
		{"empty", docstore.Document{}, "Unknown Patient"},
		{"nil", nil, "Unknown Patient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FullName(tt.record, UnknownPatient); got != tt.want {
				t.Errorf("FullName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClinicAddressFallsBackThroughParts(t *testing.T) {
	tests := []struct {
		name   string
		clinic docstore.Document
		want   string
	}{
		{"all parts", docstore.Document{"address": "123 Main St", "city": "Springfield", "province": "ON", "zipCode": "K1A"}, "123 Main St, Springfield, ON, K1A"},
		{"partial", docstore.Document{"city": "Springfield"}, "Springfield"},
		{"address line", docstore.Document{"addressLine": "123 Main St, Springfield"}, "123 Main St, Springfield"},
		{"name only", docstore.Document{"name": "City Clinic"}, "City Clinic"},
		{"empty", docstore.Document{}, "the clinic"},
		{"nil", nil, "the clinic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClinicAddress(tt.clinic, "the clinic"); got != tt.want {
				t.Errorf("ClinicAddress = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClinicAndAddressJoinsNameAndAddress(t *testing.T) {
	clinic := docstore.Document{"name": "City Clinic", "address": "123 Main St", "city": "Springfield"}
	if got := ClinicAndAddress(clinic, ""); got != "City Clinic, 123 Main St, Springfield" {
		t.Fatalf("ClinicAndAddress = %q", got)
	}
}

func TestClinicAndAddressNeverDuplicatesName(t *testing.T) {
	// Address duplicating the clinic name exactly.
	clinic := docstore.Document{"name": "City Clinic", "address": "City Clinic"}
	if got := ClinicAndAddress(clinic, ""); got != "City Clinic" {
		t.Fatalf("ClinicAndAddress = %q, want City Clinic", got)
	}

	// Address already containing the clinic name.
	clinic = docstore.Document{"name": "City Clinic", "address": "City Clinic, 123 Main St"}
	if got := ClinicAndAddress(clinic, ""); got != "City Clinic, 123 Main St" {
		t.Fatalf("ClinicAndAddress = %q, want address unchanged", got)
	}
}

func TestDateTime(t *testing.T) {
	tests := []struct {
		date, timeOfDay, want string
	}{
		{"2026-03-15", "14:30", "March 15, 2026 at 2:30 PM"},
		{"2026-03-15", "", "March 15, 2026"},
		{"", "09:05", "9:05 AM"},
		{"", "", "Not specified"},
		{"sometime soon", "", "sometime soon"}, // unparseable passes through
	}
	for _, tt := range tests {
		if got := DateTime(tt.date, tt.timeOfDay); got != tt.want {
			t.Errorf("DateTime(%q, %q) = %q, want %q", tt.date, tt.timeOfDay, got, tt.want)
		}
	}
}

func TestDoctorNamePrefixesExactlyOnce(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Smith", "Dr. Smith"},
		{"Dr. Smith", "Dr. Smith"},
		{"dr smith", "Dr. smith"},
		{"DR. Smith", "Dr. Smith"},
		{"  Dr Smith  ", "Dr. Smith"},
		{"", "Unknown Doctor"},
		{"   ", "Unknown Doctor"},
		{"Dr.", "Unknown Doctor"},
		{"Unknown Doctor", "Unknown Doctor"},
		{"Drake Ramoray", "Dr. Drake Ramoray"},
	}
	for _, tt := range tests {
		if got := DoctorName(tt.in); got != tt.want {
			t.Errorf("DoctorName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDoctorNameIsIdempotent(t *testing.T) {
	inputs := []string{"Smith", "Dr. Smith", "dr smith", "", "Dr.", "Unknown Doctor", "Drake Ramoray"}
	for _, in := range inputs {
		once := DoctorName(in)
		if twice := DoctorName(once); twice != once {
			t.Errorf("DoctorName not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
