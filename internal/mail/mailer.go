package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// 外部コラボレータとしてのメール送信。失敗は握りつぶさず呼び出し元へ返す
type Mailer interface {
	SendVerification(ctx context.Context, to string, rawToken string) error
	SendPasswordReset(ctx context.Context, to string, rawToken string, resetLink string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// 確認リンクの組み立てに使う
	BackendURL string
}

type smtpMailer struct {
	client *gomail.Client
	cfg    SMTPConfig
}

// SMTP実装
func NewSMTPMailer(cfg SMTPConfig) (Mailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return nil, err
	}

	return &smtpMailer{client: client, cfg: cfg}, nil
}

// メール確認リンクを送る。リンクは15分で切れる
func (m *smtpMailer) SendVerification(ctx context.Context, to string, rawToken string) error {
	verifyLink := fmt.Sprintf("%s/api/auth/verify-email?token=%s", m.cfg.BackendURL, rawToken)

	html := `
	<div style="font-family: Inter, system-ui, Arial;">
		<h2>Verify your email</h2>
		<p>Click the link below to verify your Secure Personal Vault account. This link expires in 15 minutes.</p>
		<a href="` + verifyLink + `" style="display:inline-block;padding:10px 14px;border-radius:6px;background:#0f172a;color:#fff;text-decoration:none;">Verify Email</a>
		<p style="color:#666;font-size:14px;margin-top:12px;">If you didn't request this, ignore this email.</p>
	</div>`

	return m.send(ctx, to, "Verify your PersonalVault account", html)
}

// パスワード変更リンクを送る
func (m *smtpMailer) SendPasswordReset(ctx context.Context, to string, rawToken string, resetLink string) error {
	html := `
	<div style="font-family: Inter, system-ui, Arial;">
		<h2>Password Reset Request</h2>
		<p>We received a request to reset your password.</p>
		<a href="` + resetLink + `" style="display:inline-block;padding:10px 15px;border-radius:5px;background:#4f46e5;color:#fff;text-decoration:none;">Change Password</a>
		<p>This link will expire in 15 minutes.</p>
	</div>`

	return m.send(ctx, to, "Reset your PersonalVault password", html)
}

func (m *smtpMailer) send(ctx context.Context, to string, subject string, html string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, html)

	return m.client.DialAndSendWithContext(ctx, msg)
}
