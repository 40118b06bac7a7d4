package queue

import (
	"bytes"
	"html/template"
)

var mailTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <p>Hola {{.Name}},</p>
  <p>{{.Message}}</p>
  <p>Gracias por elegirnos.</p>
</body>
</html>`))

func renderHTML(name, message string) string {
	if name == "" {
		name = "cliente"
	}
	var buf bytes.Buffer
	if err := mailTemplate.Execute(&buf, struct{ Name, Message string }{name, message}); err != nil {
		return message
	}
	return buf.String()
}
