package email

import "time"

// Attachment - вложение письма
type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

// Email - письмо. From пустой - подставляется адрес из конфигурации провайдера.
type Email struct {
	From        string
	To          []string
	ReplyTo     string
	Subject     string
	Body        string
	HTMLBody    string
	Attachments []Attachment
}

// TemplateData - данные для шаблонов писем
type TemplateData map[string]interface{}

// Config - общие настройки отправки
type Config struct {
	Provider  string // smtp, ses, mock
	FromEmail string
	FromName  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	UseTLS       bool
	Timeout      time.Duration

	SESRegion    string
	SESAccessKey string
	SESSecretKey string
}
