// sender.go
package email

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strings"

	"github.com/jordan-wright/email"

	"SurvivalDashboard/src/config"
)

// ReportSender 通过SMTP发送导出的图表
type ReportSender struct {
	server   string
	username string
	password string
	to       []string
	subject  string
}

// NewReportSender 根据 send_email 配置创建发送器
func NewReportSender(c *config.Config) (*ReportSender, error) {
	if c.SendEmail.Server == "" || c.SendEmail.Username == "" {
		return nil, fmt.Errorf("发件配置不完整")
	}
	if len(c.SendEmail.To) == 0 {
		return nil, fmt.Errorf("未配置收件人")
	}

	subject := c.SendEmail.Subject
	if subject == "" {
		subject = "Passenger survival report"
	}

	// 确保服务器地址包含端口
	addr := c.SendEmail.Server
	if !strings.Contains(addr, ":") {
		addr += ":465" // 默认 SSL 端口
	}

	return &ReportSender{
		server:   addr,
		username: c.SendEmail.Username,
		password: c.SendEmail.Password,
		to:       c.SendEmail.To,
		subject:  subject,
	}, nil
}

// buildMessage 组装邮件, 不存在的附件直接报错
func (s *ReportSender) buildMessage(body string, attachments []string) (*email.Email, error) {
	e := email.NewEmail()
	e.From = fmt.Sprintf("Survival Dashboard <%s>", s.username)
	e.To = s.to
	e.Subject = s.subject
	e.Text = []byte(body)

	for _, path := range attachments {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("附件文件不存在: %s", path)
		}
		if _, err := e.AttachFile(path); err != nil {
			return nil, fmt.Errorf("附件添加失败: %w", err)
		}
	}
	return e, nil
}

// Send 发送一封报告邮件(显式 TLS)
func (s *ReportSender) Send(body string, attachments []string) error {
	e, err := s.buildMessage(body, attachments)
	if err != nil {
		return err
	}

	host, _, err := net.SplitHostPort(s.server)
	if err != nil {
		return fmt.Errorf("无效的SMTP地址 %s: %w", s.server, err)
	}

	err = e.SendWithTLS(
		s.server,
		smtp.PlainAuth("", s.username, s.password, host),
		&tls.Config{ServerName: host},
	)
	if err != nil {
		return fmt.Errorf("邮件发送失败: %w (Server: %s)", err, s.server)
	}
	return nil
}
