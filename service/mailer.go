package service

import (
	"fmt"

	"github.com/BerniceZTT/telecrm_end/config"
	"github.com/BerniceZTT/telecrm_end/utils"

	"gopkg.in/gomail.v2"
)

// Mailer 邮件发送通道
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer 基于gomail的SMTP实现
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer 创建SMTP邮件通道
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// Send 发送HTML邮件
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}

// LogMailer 未配置SMTP时的降级实现,只记日志不真正发送
type LogMailer struct{}

// Send 记录而不发送
func (LogMailer) Send(to, subject, htmlBody string) error {
	utils.Logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("bodyLength", len(htmlBody)).
		Msg("SMTP未配置,邮件仅记录")
	return nil
}

var mailer Mailer = LogMailer{}

// InitMailer 根据配置初始化邮件通道
func InitMailer(cfg *config.Config) {
	if cfg.SMTPHost == "" {
		mailer = LogMailer{}
		utils.Logger.Warn().Msg("SMTP未配置,营销邮件将只记录日志")
		return
	}

	mailer = NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	utils.Logger.Info().
		Str("host", cfg.SMTPHost).
		Int("port", cfg.SMTPPort).
		Msg("SMTP邮件通道已初始化")
}

// SendMail 通过当前邮件通道发送
func SendMail(to, subject, htmlBody string) error {
	return mailer.Send(to, subject, htmlBody)
}

// AppendTrackingPixel 在HTML正文末尾追加打开追踪像素
func AppendTrackingPixel(htmlBody, baseURL, campaignID string) string {
	pixel := fmt.Sprintf(
		`<img src="%s/api/campaigns/%s/open" width="1" height="1" style="display:none" alt=""/>`,
		baseURL, campaignID,
	)
	return htmlBody + pixel
}
