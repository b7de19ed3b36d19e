package models

// Request bodies for the public API.

type CreatePaymentRequest struct {
	PlanType PlanType `json:"planType"`
}

type GenerateLeadsRequest struct {
	Query       string `json:"query"`
	Industry    string `json:"industry"`
	Location    string `json:"location"`
	CompanySize string `json:"companySize"`
	LeadCount   int    `json:"leadCount"`
}

type SavePackageRequest struct {
	PackageName string `json:"package_name"`
	SearchQuery string `json:"search_query"`
	Leads       []Lead `json:"leads"`
}
