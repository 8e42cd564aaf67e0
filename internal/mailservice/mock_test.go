package mailservice

import (
	"bytes"

	"github.com/go-mail/mail/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"

	"github.com/luanbartole/powerblog/internal/common"
)

type MockTemplate struct {
	mock.Mock
}

func (m *MockTemplate) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	args := m.Called(name, data)
	if args.Get(0) == nil {
		return nil, nil, nil, args.Error(3)
	}
	return args.Get(0).(*bytes.Buffer), args.Get(1).(*bytes.Buffer), args.Get(2).(*bytes.Buffer), args.Error(3)
}

type MockDialer struct {
	mock.Mock
}

func (d *MockDialer) DialAndSend(m ...*mail.Message) error {
	args := d.Called(m)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) send(recipient, replyTo string, data any, templateFile string) error {
	args := m.Called(recipient, replyTo, data, templateFile)
	return args.Error(0)
}

type MockMessageConsumer struct {
	mock.Mock
	deliveries chan amqp.Delivery
}

func (m *MockMessageConsumer) Consume(key common.BindingKey, exchange common.Exchange, queue common.Queue) (<-chan amqp.Delivery, error) {
	args := m.Called(key, exchange, queue)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return m.deliveries, nil
}

type MockAcknowledger struct {
	mock.Mock
}

func (a *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	return a.Called(tag, multiple).Error(0)
}

func (a *MockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	return a.Called(tag, multiple, requeue).Error(0)
}

func (a *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Called(tag, requeue).Error(0)
}
