package mailservice

import (
	"time"

	"github.com/go-mail/mail/v2"
)

const defaultTimeout = 10 * time.Second

// NewMailer creates a mailer that authenticates against host and refuses to
// send unless the relay offers STARTTLS.
func NewMailer(host string, port int, username, password, sender string, timeout time.Duration, tp TemplateParser) *Mail {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = timeout
	dialer.StartTLSPolicy = mail.MandatoryStartTLS

	return &Mail{
		dialer: dialer,
		sender: sender,
		parser: tp,
	}
}

func (m *Mail) send(recipient, replyTo string, data any, templateFile string) error {
	subject, plainBody, htmlBody, err := m.parser.ParseTemplate(templateFile, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	if replyTo != "" {
		msg.SetHeader("Reply-To", replyTo)
	}
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	return m.dialer.DialAndSend(msg)
}
