package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"garagesite/pkg/models"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// TemplateData is what both templates see.
type TemplateData struct {
	Lead          models.LeadFormData
	UserInfo      *models.UserInfo
	LeadID        string
	Source        string
	BusinessName  string
	BusinessPhone string
	ReceivedAt    time.Time
}

// FirstName is the first word of the customer's name.
func (d TemplateData) FirstName() string {
	if f := strings.Fields(d.Lead.Name); len(f) > 0 {
		return f[0]
	}
	return "there"
}

// Renderer turns a lead into message bodies.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("error parsing email templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

func (r *Renderer) render(name string, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("error rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// Notification renders the message sent to the business.
func (r *Renderer) Notification(data TemplateData) (subject, html, text string, err error) {
	html, err = r.render("notification.html.tmpl", data)
	if err != nil {
		return "", "", "", err
	}
	subject = fmt.Sprintf("New %s: %s", data.Source, data.Lead.Name)
	if data.Lead.Emergency {
		subject = "EMERGENCY - " + subject
	}
	text = fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nRequest: %s\nLead: %s\n",
		data.Lead.Name, data.Lead.Email, data.Lead.Phone, data.Lead.Summary(), data.LeadID)
	return subject, html, text, nil
}

// Autoresponder renders the confirmation sent to the customer.
func (r *Renderer) Autoresponder(data TemplateData) (subject, html, text string, err error) {
	html, err = r.render("autoresponder.html.tmpl", data)
	if err != nil {
		return "", "", "", err
	}
	subject = fmt.Sprintf("We received your request - %s", data.BusinessName)
	text = fmt.Sprintf("Hi %s,\n\nThanks for contacting %s. A technician will reach out shortly.\n",
		data.FirstName(), data.BusinessName)
	return subject, html, text, nil
}
