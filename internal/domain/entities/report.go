package entities

// UserIdentity identifies the patient behind an intake submission
type UserIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReportExportRequest is everything the export collaborator needs to render a report
type ReportExportRequest struct {
	User          UserIdentity `json:"-"`
	UserName      string       `json:"user_name"`
	Email         string       `json:"email"`
	Age           string       `json:"age"`
	Report        *RiskReport  `json:"disease_analysis"`
	Notifications []string     `json:"notifications"`
	History       FieldSet     `json:"history"`
}

// NewReportExportRequest assembles the export payload. Age is taken from the form.
func NewReportExportRequest(user UserIdentity, fields FieldSet, report *RiskReport, notifications []string) *ReportExportRequest {
	age := ""
	if f, ok := fields.Get("age"); ok {
		age = f.RawValue
	}
	if notifications == nil {
		notifications = []string{}
	}
	if report == nil {
		report = NewRiskReport(nil)
	}
	return &ReportExportRequest{
		User:          user,
		UserName:      user.Name,
		Email:         user.Email,
		Age:           age,
		Report:        report,
		Notifications: notifications,
		History:       fields,
	}
}
