package proto

// User is the public view of a user.
type User struct {
	ID           int64  `json:"id"`
	GoogleUserID string `json:"google_user_id"`
	Name         string `json:"name"`
}

// OrganizationSummary is an organization without its events.
type OrganizationSummary struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OrgType string `json:"org_type"`
}

// Organization is the public view of an organization.
type Organization struct {
	OrganizationSummary
	Events []Event `json:"events"`
}

// Event is the public view of an event. Absent values are null.
type Event struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	StartDate    string               `json:"start_date"`
	StartTime    string               `json:"start_time"`
	EndDate      *string              `json:"end_date"`
	EndTime      *string              `json:"end_time"`
	Location     string               `json:"location"`
	Description  string               `json:"description"`
	EventURL     *string              `json:"event_url"`
	Organization *OrganizationSummary `json:"organization"`
	Attendees    []User               `json:"attendees"`
}

// EventInput is a manually created event.
type EventInput struct {
	Name         string  `json:"name"`
	StartDate    string  `json:"start_date"`
	StartTime    string  `json:"start_time"`
	EndDate      *string `json:"end_date"`
	EndTime      *string `json:"end_time"`
	Location     string  `json:"location"`
	Description  string  `json:"description"`
	EventURL     string  `json:"event_url"`
	Organization string  `json:"organization"`
}

// OrganizationInput is a manually created organization.
type OrganizationInput struct {
	Name    string `json:"name"`
	OrgType string `json:"org_type"`
}

// Login is the outcome of a mobile login.
type Login struct {
	Message      string `json:"message"`
	UserID       int64  `json:"user_id"`
	GoogleUserID string `json:"google_user_id"`
}
