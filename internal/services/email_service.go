package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"placement_backend/internal/email"
	"placement_backend/internal/logger"
)

const (
	emailSendTimeout = 30 * time.Second
	appName          = "Placement Portal"
)

// EmailService предоставляет высокоуровневый интерфейс для работы с email.
// Письма из обработчиков запросов уходят асинхронно, ошибки только логируются.
type EmailService struct {
	provider    email.Provider
	templates   *email.TemplateManager
	frontendURL string
	wg          sync.WaitGroup
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(provider email.Provider, templates *email.TemplateManager, frontendURL string) *EmailService {
	return &EmailService{
		provider:    provider,
		templates:   templates,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// SendTemplated рендерит шаблон и отправляет письмо синхронно
func (s *EmailService) SendTemplated(ctx context.Context, to, subject, templateName string, data email.TemplateData) error {
	if data == nil {
		data = email.TemplateData{}
	}
	if _, ok := data["AppName"]; !ok {
		data["AppName"] = appName
	}

	html, err := s.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	return s.provider.Send(ctx, &email.Email{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: html,
	})
}

// sendAsync отправляет письмо в фоне
func (s *EmailService) sendAsync(to, subject, templateName string, data email.TemplateData) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), emailSendTimeout)
		defer cancel()

		if err := s.SendTemplated(ctx, to, subject, templateName, data); err != nil {
			logger.Error("Failed to send email",
				"template", templateName,
				"provider", s.provider.Name(),
				"error", err)
			return
		}
		logger.Debug("Email sent", "template", templateName, "provider", s.provider.Name())
	}()
}

// Wait дожидается фоновых отправок (graceful shutdown, тесты)
func (s *EmailService) Wait() {
	s.wg.Wait()
}

func (s *EmailService) link(path string) string {
	return s.frontendURL + path
}

func (s *EmailService) SendOTP(to, name, code string, ttl time.Duration) {
	s.sendAsync(to, "Your verification code", "otp", email.TemplateData{
		"Name":             name,
		"Code":             code,
		"ExpiresInMinutes": int(ttl.Minutes()),
	})
}

func (s *EmailService) SendWelcome(to, name, role string) {
	s.sendAsync(to, "Welcome to "+appName, "welcome", email.TemplateData{
		"Name":     name,
		"Role":     role,
		"LoginURL": s.link("/login"),
	})
}

func (s *EmailService) SendPasswordReset(to, name, token string) {
	s.sendAsync(to, "Reset your password", "password_reset", email.TemplateData{
		"Name":     name,
		"ResetURL": s.link("/reset-password?token=" + token),
	})
}

func (s *EmailService) SendApplicationStatus(to, name, jobTitle, companyName, status, note string, interviewAt *time.Time) {
	data := email.TemplateData{
		"Name":        name,
		"JobTitle":    jobTitle,
		"CompanyName": companyName,
		"Status":      status,
		"Note":        note,
		"InterviewAt": "",
		"URL":         s.link("/applications"),
	}
	if interviewAt != nil {
		data["InterviewAt"] = interviewAt.Format("02 Jan 2006 15:04 MST")
	}
	s.sendAsync(to, fmt.Sprintf("Application update: %s", jobTitle), "application_status", data)
}

func (s *EmailService) SendInvitation(to, name, jobTitle, companyName, message string, expiresAt time.Time) {
	s.sendAsync(to, fmt.Sprintf("You are invited to apply: %s", jobTitle), "invitation", email.TemplateData{
		"Name":        name,
		"JobTitle":    jobTitle,
		"CompanyName": companyName,
		"Message":     message,
		"ExpiresAt":   expiresAt.Format("02 Jan 2006"),
		"URL":         s.link("/invitations"),
	})
}

func (s *EmailService) SendDeadlineReminder(to, name, jobID, jobTitle, companyName string, deadline time.Time) {
	s.sendAsync(to, fmt.Sprintf("Deadline approaching: %s", jobTitle), "deadline_reminder", email.TemplateData{
		"Name":        name,
		"JobTitle":    jobTitle,
		"CompanyName": companyName,
		"Deadline":    deadline.Format("02 Jan 2006 15:04 MST"),
		"URL":         s.link("/jobs/" + jobID),
	})
}

func (s *EmailService) SendBroadcast(to, title, message string) {
	s.sendAsync(to, title, "broadcast", email.TemplateData{
		"Title":   title,
		"Message": message,
	})
}
