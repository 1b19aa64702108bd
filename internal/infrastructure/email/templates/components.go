// Package templates provides email template components
package templates

import (
	"bytes"
	"html/template"
	"log"
)

// ConversionAlertProps carries the details of a conversion event for
// the alert email body.
type ConversionAlertProps struct {
	Property  string
	Action    string
	Target    string
	URL       string
	SessionID string
	Timestamp string
}

var conversionAlertTemplate = template.Must(template.New("conversionAlert").Parse(`
    <h1 style="font-size: 22px; font-weight: bold; margin: 0; margin-bottom: 16px;">New conversion on {{.Property}}</h1>
    <p style="font-size: 16px; margin: 0; margin-bottom: 16px;">A visitor just completed <strong>{{.Action}}</strong>{{if .Target}} on <strong>{{.Target}}</strong>{{end}}.</p>
    <table role="presentation" border="0" cellpadding="4" cellspacing="0" style="font-size: 14px; color: #444;">
      <tr><td>Page</td><td>{{.URL}}</td></tr>
      <tr><td>Session</td><td>{{.SessionID}}</td></tr>
      <tr><td>When</td><td>{{.Timestamp}}</td></tr>
    </table>`))

// GetConversionAlertContent renders the conversion alert body.
func GetConversionAlertContent(props ConversionAlertProps) string {
	var buf bytes.Buffer
	if err := conversionAlertTemplate.Execute(&buf, props); err != nil {
		log.Printf("ERROR: failed to render conversion alert: %v", err)
		return ""
	}
	return buf.String()
}
