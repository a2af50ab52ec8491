package models

// Profile is the model for the 'profiles' table, one row per user.
type Profile struct {
	UserID      int64  `json:"userId" db:"user_id"`
	FirstName   string `json:"firstName" db:"first_name"`
	LastName    string `json:"lastName" db:"last_name"`
	Address     string `json:"address" db:"address"`
	PhoneNumber string `json:"phoneNumber" db:"phone_number"`
	Preferences string `json:"preferences" db:"preferences"`
}
