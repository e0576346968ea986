package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/YouSangSon/tour-service/internal/config"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"github.com/resend/resend-go/v3"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Recipient는 메일 수신자입니다
type Recipient struct {
	Name  string
	Email string
}

// FirstName은 이름의 첫 단어를 반환합니다
func (r Recipient) FirstName() string {
	first, _, _ := strings.Cut(strings.TrimSpace(r.Name), " ")
	return first
}

// Message는 렌더링된 메일입니다
type Message struct {
	Template string
	To       string
	Subject  string
	HTML     string
	Text     string
}

// Sender는 렌더링된 메일을 전송합니다
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Mailer는 템플릿 메일을 렌더링하여 Sender로 전송합니다
type Mailer struct {
	sender  Sender
	metrics *metrics.Metrics
}

var _ repository.Mailer = (*Mailer)(nil)

// NewMailer는 새로운 Mailer를 생성합니다
func NewMailer(sender Sender) *Mailer {
	return &Mailer{sender: sender, metrics: metrics.GetMetrics()}
}

// New는 설정에 따라 resend 또는 로그 Sender를 사용하는 Mailer를 생성합니다
func New(cfg config.MailConfig) *Mailer {
	if !cfg.Enabled || cfg.ResendAPIKey == "" {
		return NewMailer(LogSender{})
	}
	return NewMailer(NewResendSender(resend.NewClient(cfg.ResendAPIKey).Emails, cfg.From, cfg.ReplyTo))
}

// SendWelcome은 가입 환영 메일을 보냅니다
func (m *Mailer) SendWelcome(ctx context.Context, name, email, url string) error {
	to := Recipient{Name: name, Email: email}
	return m.send(ctx, "welcome", to, "Welcome to the Natours Family!", map[string]interface{}{
		"FirstName": to.FirstName(),
		"URL":       url,
	}, fmt.Sprintf("Welcome to Natours, %s! Upload your user photo at %s", to.FirstName(), url))
}

// SendPasswordReset은 비밀번호 재설정 메일을 보냅니다
func (m *Mailer) SendPasswordReset(ctx context.Context, name, email, url string, validFor time.Duration) error {
	to := Recipient{Name: name, Email: email}
	return m.send(ctx, "password_reset", to, fmt.Sprintf("Your password reset token (valid for %s)", humanize(validFor)), map[string]interface{}{
		"FirstName": to.FirstName(),
		"URL":       url,
		"ValidFor":  humanize(validFor),
	}, fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s.\nIf you didn't forget your password, please ignore this email!", url))
}

func (m *Mailer) send(ctx context.Context, name string, to Recipient, subject string, data interface{}, text string) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s email: %w", name, err)
	}

	err := m.sender.Send(ctx, &Message{
		Template: name,
		To:       to.Email,
		Subject:  subject,
		HTML:     buf.String(),
		Text:     text,
	})
	if err != nil {
		m.metrics.RecordMailSent(name, "error")
		logger.LogError(ctx, err, "failed to send email", logger.Email(to.Email), logger.Field("template", name))
		return err
	}

	m.metrics.RecordMailSent(name, "success")
	return nil
}

func humanize(d time.Duration) string {
	if d%time.Minute == 0 && d >= time.Minute {
		return fmt.Sprintf("%d min", int(d/time.Minute))
	}
	return d.String()
}

// LogSender는 메일을 보내지 않고 로그로 남깁니다 (개발 환경용)
type LogSender struct{}

// Send는 메일 내용을 debug 로그로 출력합니다
func (LogSender) Send(ctx context.Context, msg *Message) error {
	logger.Info(ctx, "email not sent, mail delivery disabled",
		logger.Email(msg.To),
		logger.Field("subject", msg.Subject),
		logger.Field("template", msg.Template),
	)
	logger.Debug(ctx, "email body", logger.Field("text", msg.Text))
	return nil
}
