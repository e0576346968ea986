package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

// EmailsAPI는 resend Emails 서비스 중 사용하는 부분입니다
type EmailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender는 Resend API로 메일을 전송합니다
type ResendSender struct {
	emails  EmailsAPI
	from    string
	replyTo string
}

// NewResendSender는 새로운 ResendSender를 생성합니다
func NewResendSender(emails EmailsAPI, from, replyTo string) *ResendSender {
	return &ResendSender{emails: emails, from: from, replyTo: replyTo}
}

// Send는 메일을 전송합니다
func (s *ResendSender) Send(ctx context.Context, msg *Message) error {
	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: s.replyTo,
		Tags:    []resend.Tag{{Name: "template", Value: msg.Template}},
	}

	if _, err := s.emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}
	return nil
}
