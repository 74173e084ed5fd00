package model

import "time"

// Calculation is a stored engine invocation: the exact inputs and the result
// they produced, so a past estimate can be reproduced and audited.
type Calculation struct {
	ID                 string             `json:"id"`
	CompanyName        string             `json:"company_name"`
	Industry           string             `json:"industry"`
	MethodologyID      string             `json:"methodology_id"`
	MethodologyVersion string             `json:"methodology_version"`
	Input              CompanyData        `json:"input"`
	Assumptions        ImpactAssumptions  `json:"assumptions,omitempty"`
	Result             *CalculationResult `json:"result"`
	CreatedAt          time.Time          `json:"created_at"`
}
