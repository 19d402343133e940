package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/config"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	SendDeadlineReminder(to, fullName string, notificationType deadline.NotificationType, deadlineDate string) error
	SendPendingEmployees(to, recipientName string, notificationType deadline.NotificationType, employeeNames []string) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	backoff   func(attempt int) time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}, nil
}

type message struct {
	template string
	subject  string
}

var deadlineMessages = map[deadline.NotificationType]message{
	deadline.NotificationReminder7Days: {"reminder_7days.html", "Recordatorio: 7 días para completar su evaluación de desempeño"},
	deadline.NotificationReminder3Days: {"reminder_3days.html", "Importante: Solo 3 días para completar su evaluación de desempeño"},
	deadline.NotificationReminder1Day:  {"reminder_1day.html", "Último aviso: 24 horas para completar su evaluación"},
	deadline.NotificationExpired:       {"expired.html", "Plazo expirado: Evaluación de desempeño"},
}

const pendingEmployeesSubject = "Notificación: Empleados con evaluaciones pendientes"

type reminderEmailData struct {
	FullName  string
	Deadline  string
	Automatic bool
}

type pendingEmployeesEmailData struct {
	FullName  string
	Employees []string
	Automatic bool
}

// SendDeadlineReminder sends one of the employee-facing deadline emails
func (s *emailServiceImpl) SendDeadlineReminder(to, fullName string, notificationType deadline.NotificationType, deadlineDate string) error {
	subject, body, err := s.renderReminder(fullName, notificationType, deadlineDate)
	if err != nil {
		return err
	}
	return s.sendHTML(to, subject, body)
}

// SendPendingEmployees tells a supervisor or HR manager whose reviews are still open after the deadline
func (s *emailServiceImpl) SendPendingEmployees(to, recipientName string, notificationType deadline.NotificationType, employeeNames []string) error {
	subject, body, err := s.renderPendingEmployees(recipientName, notificationType, employeeNames)
	if err != nil {
		return err
	}
	return s.sendHTML(to, subject, body)
}

func (s *emailServiceImpl) renderReminder(fullName string, notificationType deadline.NotificationType, deadlineDate string) (string, string, error) {
	msg, ok := deadlineMessages[notificationType]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", deadline.ErrUnknownNotificationType, notificationType)
	}

	data := reminderEmailData{
		FullName:  fullName,
		Deadline:  deadlineDate,
		Automatic: notificationType != deadline.NotificationExpired,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, msg.template, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template: %w", err)
	}

	return msg.subject, body.String(), nil
}

func (s *emailServiceImpl) renderPendingEmployees(recipientName string, notificationType deadline.NotificationType, employeeNames []string) (string, string, error) {
	if notificationType != deadline.NotificationSupervisor && notificationType != deadline.NotificationHR {
		return "", "", fmt.Errorf("%w: %s", deadline.ErrUnknownNotificationType, notificationType)
	}
	if len(employeeNames) == 0 {
		return "", "", fmt.Errorf("no employees given for %s", notificationType)
	}

	data := pendingEmployeesEmailData{
		FullName:  recipientName,
		Employees: employeeNames,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "pending_employees.html", data); err != nil {
		return "", "", fmt.Errorf("failed to execute template: %w", err)
	}

	return pendingEmployeesSubject, body.String(), nil
}

// buildMessage assembles an HTML mail with RFC 2047 encoded headers.
func buildMessage(fromName, from, to, subject, htmlBody string) []byte {
	var msg bytes.Buffer
	sender := (&mail.Address{Name: fromName, Address: from}).String()
	fmt.Fprintf(&msg, "From: %s\r\n", sender)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(htmlBody)
	return msg.Bytes()
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	raw := buildMessage(s.cfg.FromName, s.cfg.From, to, subject, htmlBody)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = s.send(addr, auth, s.cfg.From, []string{to}, raw)
		if lastErr == nil {
			slog.Info("Email sent", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", lastErr,
		)
		if attempt < maxRetries {
			time.Sleep(s.backoff(attempt))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
