package auth

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

const passwordResetSubject = "Reset your password"

//go:embed templates/password_reset.html
var templatesFS embed.FS

var passwordResetTmpl = template.Must(template.ParseFS(templatesFS, "templates/password_reset.html"))

func renderPasswordResetEmail(link string, ttl time.Duration) (subject, body string, err error) {
	var buf bytes.Buffer
	err = passwordResetTmpl.Execute(&buf, struct {
		Link    string
		Minutes int
	}{
		Link:    link,
		Minutes: int(ttl.Minutes()),
	})
	if err != nil {
		return "", "", err
	}
	return passwordResetSubject, buf.String(), nil
}
