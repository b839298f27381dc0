// Package profile reads and saves person records, papering over the
// naming-convention drift between the collections that hold them.
package profile

const (
	// Collection is the primary person collection.
	Collection = "users"
	// AltCollection is tried when the primary lookup comes back empty.
	AltCollection = "patients"
)

// View is the assembled person profile.
type View struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	BirthDate   string `json:"birth_date,omitempty"`
	Role        string `json:"role,omitempty"`
}

// UpdateRequest carries the editable profile fields. Zero values are
// skipped so a save is always a partial update.
type UpdateRequest struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	BirthDate  string `json:"birth_date"`
}
