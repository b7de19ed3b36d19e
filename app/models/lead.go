package models

import "time"

// Lead as returned by the generation provider and persisted under a package.
type Lead struct {
	ID          string `json:"id,omitempty" db:"id"`
	UserID      string `json:"-" db:"user_id"`
	PackageID   string `json:"package_id,omitempty" db:"package_id"`
	CompanyName string `json:"company_name" db:"company_name"`
	ContactName string `json:"contact_name" db:"contact_name"`
	Email       string `json:"email" db:"email"`
	Phone       string `json:"phone" db:"phone"`
	Website     string `json:"website" db:"website"`
	Industry    string `json:"industry" db:"industry"`
	Description string `json:"description,omitempty" db:"description"`
	Score       int    `json:"score" db:"score"`
	Status      string `json:"status,omitempty" db:"status"`
}

// LeadPackage is a named, saved collection of leads. lead_count always
// equals the number of leads inserted under the package.
type LeadPackage struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"-" db:"user_id"`
	PackageName string    `json:"package_name" db:"package_name"`
	SearchQuery string    `json:"search_query" db:"search_query"`
	LeadCount   int       `json:"lead_count" db:"lead_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// SearchEntry records one generation request for the history view.
type SearchEntry struct {
	ID           string    `json:"id" db:"id"`
	Query        string    `json:"query" db:"query"`
	ResultsCount int       `json:"results_count" db:"results_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DashboardStats aggregates the counters shown on the dashboard.
type DashboardStats struct {
	TotalLeads         int `json:"total_leads"`
	LeadPackages       int `json:"lead_packages"`
	MonthlySearches    int `json:"monthly_searches"`
	AvgLeadsPerPackage int `json:"avg_leads_per_package"`
}
