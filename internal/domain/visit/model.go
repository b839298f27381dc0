// Package visit serves the patient-facing appointment screens: upcoming
// and past visit lists and the assembled visit detail, plus cancellation.
package visit

// Collection is the document collection holding appointment records.
const Collection = "appointments"

// View is the assembled visit detail consumed by the patient screens.
type View struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	DoctorName string `json:"doctor_name"`
	ClinicName string `json:"clinic_name"`
	Location   string `json:"location"`
	When       string `json:"when"`
	Reason     string `json:"reason"`
}
