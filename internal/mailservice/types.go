package mailservice

import (
	"bytes"
	"context"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/luanbartole/powerblog/internal/common"
)

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Sender    string
	Recipient string
	Timeout   time.Duration
}

type MailService struct {
	mb        common.MessageConsumer
	m         Mailer
	recipient string
	logger    MailLogger
	baseDelay time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

type Mail struct {
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient, replyTo string, data any, templateFile string) error
}

type Template struct{}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

// ContactMessage is what a visitor submits through the contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// DeliveryError wraps a failure to hand a message to the mail relay.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
