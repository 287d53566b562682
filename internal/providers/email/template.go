package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	TemplateActivation    = "activation"
	TemplatePasswordReset = "password_reset"
	TemplateSalesReport   = "sales_report"
)

var defaultSubjects = map[string]string{
	TemplateActivation:    "Activate your Birracraft account",
	TemplatePasswordReset: "Reset your Birracraft password",
	TemplateSalesReport:   "Your Birracraft sales report",
}

func render(name string, data map[string]any) (string, string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name+".html", data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	subject := defaultSubjects[name]
	if subj, ok := data["subject"].(string); ok && subj != "" {
		subject = subj
	}
	if subject == "" {
		subject = "Notification from Birracraft"
	}
	return subject, body.String(), nil
}
