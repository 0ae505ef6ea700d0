package request

type ReportJob struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	PropertyID    string `json:"propertyId"`
	Priority      string `json:"priority"`
	ReporterPhoto string `json:"reporterPhoto"`
}

type AssignJob struct {
	TechnicianID string `json:"technicianId" validate:"required"`
	Priority     string `json:"priority"` // optional, keeps the reporter's choice when empty
}

type ChangeStatus struct {
	Status string `json:"status" validate:"required"`
}

type ChangePriority struct {
	Priority string `json:"priority" validate:"required"`
}

type AttachPhoto struct {
	Slot string `json:"slot" validate:"required,oneof=before after"`
	URL  string `json:"url" validate:"required,url"`
}

type AddComment struct {
	Text string `json:"text" validate:"required"`
}
