// Package mailer — исходящая почта.
//
// SMTP-отправка построена на github.com/wneessen/go-mail. Если SMTP не сконфигурирован,
// используется LogMailer: письмо не уходит, в лог пишется только факт отправки.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/pribylovaa/go-blog-auth/internal/config"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/redact"
)

// Mailer отправляет HTML-письмо на один адрес.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// SMTP — отправка через SMTP-сервер.
type SMTP struct {
	cfg config.MailConfig
}

// New возвращает SMTP-мейлер или LogMailer, если cfg.Host пуст.
func New(cfg config.MailConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}

	return &SMTP{cfg: cfg}
}

// Send собирает сообщение и отправляет его в рамках ctx.
func (m *SMTP) Send(ctx context.Context, to, subject, html string) error {
	const op = "mailer.SMTP.Send"

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("%s: from: %w", op, err)
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("%s: to: %w", op, err)
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, html)

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.SendTimeout > 0 {
		opts = append(opts, gomail.WithTimeout(m.cfg.SendTimeout))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("%s: client: %w", op, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%s: send: %w", op, err)
	}

	return nil
}

// LogMailer только логирует факт отправки (локальный запуск, тестовые стенды).
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, _ string) error {
	log.From(ctx).Info("mail_skipped_no_smtp",
		slog.String("to", redact.Email(to)),
		slog.String("subject", subject),
	)

	return nil
}
