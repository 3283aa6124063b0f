package model

// Client represents a customer that orders can be created for.
type Client struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name,omitempty"`
	BirthDate  string `json:"birth_date"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

// FullName returns the client's display name.
func (c Client) FullName() string {
	if c.MiddleName != "" {
		return c.LastName + " " + c.FirstName + " " + c.MiddleName
	}
	return c.LastName + " " + c.FirstName
}

// ClientUpdate carries changed fields for a client update.
// The backend keys the update on the current first and last name;
// nil fields are left unchanged.
type ClientUpdate struct {
	NewFirstName  *string `json:"new_first_name,omitempty"`
	NewLastName   *string `json:"new_last_name,omitempty"`
	NewMiddleName *string `json:"new_middle_name,omitempty"`
	NewBirthDate  *string `json:"new_birth_date,omitempty"`
	NewPhone      *string `json:"new_phone,omitempty"`
	NewAddress    *string `json:"new_address,omitempty"`
}
