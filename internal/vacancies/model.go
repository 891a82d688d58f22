package vacancies

import "time"

// Vacancy is a job posting published by a company.
type Vacancy struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	CompanyName string    `json:"company_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	PostedAt    time.Time `json:"posted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Vacancy lifecycle states as the platform reports them.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)
