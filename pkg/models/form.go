package models

import "strings"

// LeadFormData is the contact/booking form as the site's pages submit it.
type LeadFormData struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required,phone"`
	Service       string `json:"service,omitempty" binding:"max=200"`
	Message       string `json:"message,omitempty" binding:"max=2000"`
	Address       string `json:"address,omitempty" binding:"max=200"`
	ZipCode       string `json:"zipCode,omitempty" binding:"omitempty,zipcode"`
	PreferredDate string `json:"preferredDate,omitempty"`
	PreferredTime string `json:"preferredTime,omitempty"`
	Emergency     bool   `json:"emergency,omitempty"`
}

// MissingRequired reports whether any of name, email or phone is blank.
func (f LeadFormData) MissingRequired() bool {
	return strings.TrimSpace(f.Name) == "" ||
		strings.TrimSpace(f.Email) == "" ||
		strings.TrimSpace(f.Phone) == ""
}

// Summary is the single line describing what the customer needs.
func (f LeadFormData) Summary() string {
	switch {
	case f.Service != "" && f.Message != "":
		return f.Service + ": " + f.Message
	case f.Service != "":
		return f.Service
	default:
		return f.Message
	}
}

// LeadRequest is the body of POST /api/lead, the short quote form.
type LeadRequest struct {
	Name           string `json:"name" binding:"required,min=2,max=100"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"required,phone"`
	Issue          string `json:"issue" binding:"required,max=1000"`
	ZipCode        string `json:"zipCode" binding:"required,zipcode"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

// FormData converts the quote form into the common lead shape.
func (r LeadRequest) FormData() LeadFormData {
	return LeadFormData{
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Phone:   strings.TrimSpace(r.Phone),
		Message: strings.TrimSpace(r.Issue),
		ZipCode: strings.TrimSpace(r.ZipCode),
	}
}

// UserInfo is optional browser context sent alongside a form.
type UserInfo struct {
	UserAgent   string `json:"userAgent,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	PageURL     string `json:"pageUrl,omitempty"`
	UTMSource   string `json:"utmSource,omitempty"`
	UTMMedium   string `json:"utmMedium,omitempty"`
	UTMCampaign string `json:"utmCampaign,omitempty"`
	GCLID       string `json:"gclid,omitempty"`
}

// SubmitFormRequest is the body of POST /api/submit-form.
type SubmitFormRequest struct {
	FormData       LeadFormData `json:"formData"`
	RecaptchaToken string       `json:"recaptchaToken,omitempty"`
	UserInfo       *UserInfo    `json:"userInfo,omitempty"`
}
