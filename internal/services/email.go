package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/BINU242/refref/internal/config"
	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/logger"
	"gorm.io/gorm"
)

type EmailService struct {
	db      *gorm.DB
	baseURL string
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB, widgetCfg *config.WidgetConfig) *EmailService {
	baseURL := ""
	if widgetCfg != nil {
		baseURL = strings.TrimSuffix(widgetCfg.BaseURL, "/")
	}
	return &EmailService{db: db, baseURL: baseURL}
}

func (s *EmailService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("config_group = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// ProcessEmailTask is the queue processor for outbound email jobs.
func (s *EmailService) ProcessEmailTask(ctx context.Context, task *EmailTask) error {
	switch task.Kind {
	case EmailKindInvitation:
		return s.sendInvitationEmail(task.InvitationID)
	default:
		logger.Warnf("[Email] Unknown email task kind: %s", task.Kind)
		return nil
	}
}

func (s *EmailService) sendInvitationEmail(invitationID uint) error {
	var invitation models.Invitation
	if err := s.db.Preload("Project").Preload("Inviter").
		First(&invitation, invitationID).Error; err != nil {
		return err
	}

	// Stale jobs for cancelled/expired invitations are dropped silently.
	if invitation.Status != models.InvitationPending {
		return nil
	}

	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		logger.Infof("[Email] Delivery disabled, skipping invitation %d", invitationID)
		return nil
	}

	projectName := "a project"
	if invitation.Project != nil {
		projectName = invitation.Project.Name
	}
	inviterName := ""
	if invitation.Inviter != nil {
		inviterName = invitation.Inviter.Name
		if inviterName == "" {
			inviterName = invitation.Inviter.Email
		}
	}

	subject := fmt.Sprintf("[RefRef] You've been invited to %s", projectName)
	body := s.buildInvitationBody(&invitation, projectName, inviterName)

	return s.sendEmail(config, []string{invitation.Email}, subject, body)
}

func (s *EmailService) buildInvitationBody(invitation *models.Invitation, projectName, inviterName string) string {
	acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s", s.baseURL, invitation.Token)

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Project Invitation</h2>")
	if inviterName != "" {
		sb.WriteString(fmt.Sprintf("<p>%s has invited you to join <b>%s</b> as <b>%s</b>.</p>",
			inviterName, projectName, invitation.Role))
	} else {
		sb.WriteString(fmt.Sprintf("<p>You have been invited to join <b>%s</b> as <b>%s</b>.</p>",
			projectName, invitation.Role))
	}
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"background: #4f46e5; color: #fff; padding: 10px 20px; border-radius: 6px; text-decoration: none;\">Accept Invitation</a></p>", acceptURL))
	sb.WriteString(fmt.Sprintf("<p style=\"color: #888;\">This invitation expires on %s.</p>",
		invitation.ExpiresAt.Format("Jan 2, 2006")))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by RefRef</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent invitation to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	_, err = w.Write([]byte(message))
	if err != nil {
		return err
	}

	return w.Close()
}
