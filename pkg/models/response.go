package models

// LeadResponse is returned by POST /api/lead.
type LeadResponse struct {
	OK               bool              `json:"ok"`
	Message          string            `json:"message"`
	LeadID           string            `json:"leadId,omitempty"`
	Partial          bool              `json:"partial,omitempty"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// SubmitFormResponse is returned by POST /api/submit-form.
type SubmitFormResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Partial bool   `json:"partial,omitempty"`
	LeadID  string `json:"leadId,omitempty"`
}

// RecaptchaConfig tells the browser which site key to load.
type RecaptchaConfig struct {
	SiteKey string `json:"siteKey"`
	Enabled bool   `json:"enabled"`
}
