package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pribylovaa/go-blog-auth/internal/mailer"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/log"
	"github.com/pribylovaa/go-blog-auth/internal/pkg/redact"
)

const defaultMailTimeout = 20 * time.Second

// deliver отправляет письмо в фоне. Ошибка отправки только логируется;
// отмена контекста запроса не прерывает отправку.
func (s *Service) deliver(ctx context.Context, to string, letter mailer.Letter) {
	lg := log.From(ctx)

	timeout := s.cfg.Mail.SendTimeout
	if timeout <= 0 {
		timeout = defaultMailTimeout
	}

	sendCtx := log.Into(context.WithoutCancel(ctx), lg)

	s.mailWG.Add(1)
	go func() {
		defer s.mailWG.Done()

		ctx, cancel := context.WithTimeout(sendCtx, timeout)
		defer cancel()

		if err := s.mailer.Send(ctx, to, letter.Subject, letter.HTML); err != nil {
			lg.Warn("mail_send_failed",
				slog.String("to", redact.Email(to)),
				slog.String("subject", letter.Subject),
				slog.String("err", err.Error()),
			)
			return
		}

		lg.Debug("mail_sent",
			slog.String("to", redact.Email(to)),
			slog.String("subject", letter.Subject),
		)
	}()
}

// NotifyInternalError сообщает администратору о внутренней ошибке,
// если настроен mail.admin_email. request — строка вида "/path [METHOD]".
func (s *Service) NotifyInternalError(ctx context.Context, request string, err error) {
	if s.cfg.Mail.AdminEmail == "" || err == nil {
		return
	}

	letter, rerr := mailer.InternalError(s.cfg.Env, request, err.Error(), s.now())
	if rerr != nil {
		log.From(ctx).Error("mail_render_failed", slog.String("err", rerr.Error()))
		return
	}

	s.deliver(ctx, s.cfg.Mail.AdminEmail, letter)
}

// fullName — имя получателя для приветствия в письме.
func fullName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
