// Package history reads medical history entries: the per-encounter records
// holding SOAP notes, diagnoses, and the embedded prescriptions and
// certificates for a completed consultation.
package history

// Collection is the document collection holding history entries. Entries
// carry patientId, consultationId, and appointmentId fields; the
// consultation-linked entry is the source of truth, with lookup by
// appointment id as the fallback path.
const Collection = "medicalHistory"

// PrescriptionView is one prescription row, display-ready.
type PrescriptionView struct {
	Medication   string `json:"medication"`
	Dosage       string `json:"dosage"`
	Instructions string `json:"instructions"`
	PrescribedBy string `json:"prescribed_by"`
	Date         string `json:"date"`
}

// CertificateView is one medical certificate row, display-ready.
type CertificateView struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	IssuedBy    string `json:"issued_by"`
	Date        string `json:"date"`
}

// ClinicalSummary carries the structured clinical fields of an entry.
// Fields hold sentinel copy rather than empty strings when nothing was
// recorded, so rendering code never needs to null-check.
type ClinicalSummary struct {
	Subjective    string `json:"subjective"`
	Objective     string `json:"objective"`
	Assessment    string `json:"assessment"`
	Plan          string `json:"plan"`
	Diagnosis     string `json:"diagnosis"`
	Differential  string `json:"differential"`
	TreatmentPlan string `json:"treatment_plan"`
}

// Sentinels for absent clinical data.
const (
	NoDiagnosis     = "No diagnosis recorded"
	NoDifferential  = "No differential diagnosis recorded"
	NoTreatmentPlan = "No treatment plan recorded"
	NoNotes         = "No notes recorded"
)

// EmptySummary returns a summary populated entirely with sentinel copy.
func EmptySummary() ClinicalSummary {
	return ClinicalSummary{
		Subjective:    NoNotes,
		Objective:     NoNotes,
		Assessment:    NoNotes,
		Plan:          NoNotes,
		Diagnosis:     NoDiagnosis,
		Differential:  NoDifferential,
		TreatmentPlan: NoTreatmentPlan,
	}
}
