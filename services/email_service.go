package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/ozownz/meme-battles/config"
)

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Прямое TLS-соединение (обычно порт 465)
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		defer conn.Close()
		var clientErr error
		client, clientErr = smtp.NewClient(conn, s.cfg.SMTPHost)
		if clientErr != nil {
			return fmt.Errorf("ошибка создания SMTP клиента: %w", clientErr)
		}
	} else {
		// STARTTLS (обычно порт 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("ошибка команды STARTTLS: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
	}

	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("ошибка MAIL FROM: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("ошибка RCPT TO: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}

	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("ошибка записи сообщения: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия DATA: %w", err)
	}

	return nil
}

var (
	welcomeEmailTmpl = template.Must(template.New("welcome").Parse(`
		<h2>Добро пожаловать в Meme Battles!</h2>
		<p>Подтвердите свой email, перейдя по ссылке:</p>
		<p><a href="{{.ConfirmationLink}}">{{.ConfirmationLink}}</a></p>`))

	passwordResetTmpl = template.Must(template.New("reset").Parse(`
		<h2>Сброс пароля</h2>
		<p>Чтобы задать новый пароль, перейдите по ссылке:</p>
		<p><a href="{{.ResetLink}}">{{.ResetLink}}</a></p>
		<p>Ссылка действует один час.</p>`))

	battleInviteTmpl = template.Must(template.New("invite").Parse(`
		<h2>Вас пригласили в мем-баттл «{{.BattleTitle}}»</h2>
		<p>Присоединяйтесь по ссылке:</p>
		<p><a href="{{.JoinLink}}">{{.JoinLink}}</a></p>`))
)

func renderEmailBody(t *template.Template, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", t.Name(), err)
	}
	return body.String(), nil
}

func (s *EmailService) SendWelcomeEmail(userEmail string, confirmationToken string) error {
	subject := "Добро пожаловать в Meme Battles!"
	data := struct {
		ConfirmationLink string
	}{
		ConfirmationLink: fmt.Sprintf("%s/auth/confirm-email?token=%s", s.cfg.PublicBaseURL, confirmationToken),
	}

	htmlBody, err := renderEmailBody(welcomeEmailTmpl, data)
	if err != nil {
		return fmt.Errorf("ошибка генерации тела приветственного письма: %w", err)
	}
	return s.SendEmail([]string{userEmail}, subject, htmlBody)
}

func (s *EmailService) SendPasswordResetEmail(userEmail string, resetToken string) error {
	subject := "Сброс пароля для Meme Battles"
	data := struct {
		ResetLink string
	}{
		ResetLink: fmt.Sprintf("%s/auth/reset-password?token=%s", s.cfg.PublicBaseURL, resetToken),
	}

	htmlBody, err := renderEmailBody(passwordResetTmpl, data)
	if err != nil {
		return fmt.Errorf("ошибка генерации тела письма для сброса пароля: %w", err)
	}
	return s.SendEmail([]string{userEmail}, subject, htmlBody)
}

// SendBattleInviteEmail отправляет ссылку для присоединения к баттлу.
func (s *EmailService) SendBattleInviteEmail(userEmail, battleTitle string, battleID int) error {
	subject := fmt.Sprintf("Приглашение в мем-баттл «%s»", battleTitle)
	data := struct {
		BattleTitle string
		JoinLink    string
	}{
		BattleTitle: battleTitle,
		JoinLink:    fmt.Sprintf("%s/battles/%d/join", s.cfg.PublicBaseURL, battleID),
	}

	htmlBody, err := renderEmailBody(battleInviteTmpl, data)
	if err != nil {
		return fmt.Errorf("ошибка генерации тела письма-приглашения: %w", err)
	}
	return s.SendEmail([]string{userEmail}, subject, htmlBody)
}
