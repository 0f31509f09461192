// Package mail — отправка исходящих писем (сброс пароля, приветствие).
package mail

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"natours/internal/logs"
)

// Message — одно исходящее письмо.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender — интерфейс доставки; сбой доставки — операционная ошибка,
// вызывающая сторона обязана откатить частично выданный reset-токен.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender шлёт письма через gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTP(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender — dev-режим без SMTP: письмо целиком уходит в лог.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logs.Logger.Infof("mail (smtp disabled): to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}

// ResetMessage — письмо со ссылкой на сброс пароля.
func ResetMessage(to, resetURL string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your password reset token (valid for %s)", ttl),
		Body: fmt.Sprintf(
			"Forgot your password? Submit a PATCH request with your new password to:\n%s\n\n"+
				"If you didn't forget your password, please ignore this email.", resetURL),
	}
}
