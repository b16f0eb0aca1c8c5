package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

var assignmentTmpl = template.Must(template.New("assignment").Parse(
	`<p>Hello {{.TeacherName}},</p>
<p>{{if eq .LeadCount 1}}A new family lead has{{else}}{{.LeadCount}} family leads have{{end}} been assigned to you in the customer pool.</p>
{{if .Remark}}<p>Note from the assigner: {{.Remark}}</p>{{end}}
<p>Please follow up within one working day.</p>`))

// SendAssignment mails a teacher that leads were handed to them.
func (s *EmailSender) SendAssignment(to, teacherName string, leadCount int, remark string) error {
	data := AssignmentEmailData{
		TeacherName: teacherName,
		LeadCount:   leadCount,
		Remark:      remark,
	}

	var body bytes.Buffer
	if err := assignmentTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render assignment mail: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("New customer pool assignment for %s", teacherName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send assignment mail: %w", err)
	}
	return nil
}
