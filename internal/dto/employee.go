package dto

import "time"

// EmployeeItem is the roster view of one employee with its attribute bag.
type EmployeeItem struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	ArrivalDate time.Time         `json:"arrival_date"`
	Attributes  map[string]string `json:"attributes"`
}

// ImportOptions tunes roster ingestion.
type ImportOptions struct {
	ReplaceExisting bool
	CreatedBy       string
}

// ImportRowError records one rejected spreadsheet row.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarises a roster import run.
type ImportResult struct {
	Success          bool             `json:"success"`
	TotalRows        int              `json:"total_rows"`
	ProcessedRows    int              `json:"processed_rows"`
	CreatedEmployees int              `json:"created_employees"`
	DeletedEmployees int              `json:"deleted_employees"`
	AttributeKeys    []string         `json:"attribute_keys"`
	Errors           []ImportRowError `json:"errors,omitempty"`
}
