package request

type CreateUser struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone"`
	Role      string `json:"role" validate:"omitempty,oneof=manager technician reporter"`
}

type UpdatePreferences struct {
	PushEnabled      bool `json:"pushEnabled"`
	SMSEnabled       bool `json:"smsEnabled"`
	EmailEnabled     bool `json:"emailEnabled"`
	HighPriorityOnly bool `json:"highPriorityOnly"`
}
