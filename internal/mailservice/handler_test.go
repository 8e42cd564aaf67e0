package mailservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/luanbartole/powerblog/internal/common"
)

func newTestService(mb common.MessageConsumer, m Mailer) *MailService {
	ctx, cancel := context.WithCancel(context.Background())

	return &MailService{
		mb:        mb,
		m:         m,
		recipient: "owner@example.com",
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		baseDelay: time.Millisecond,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func TestSendContactMessage(t *testing.T) {
	testCases := []struct {
		name    string
		msg     ContactMessage
		replyTo string
		sendErr error
	}{
		{
			name:    "valid visitor email",
			msg:     ContactMessage{Name: "Ada", Email: "ada@example.com", Phone: "1", Message: "Hi"},
			replyTo: "ada@example.com",
		},
		{
			name:    "malformed visitor email",
			msg:     ContactMessage{Name: "Ada", Email: "not-an-email", Message: "Hi"},
			replyTo: "",
		},
		{
			name:    "relay failure",
			msg:     ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Hi"},
			replyTo: "ada@example.com",
			sendErr: errors.New("535 authentication failed"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockMailer := new(MockMailer)
			mockMailer.On("send", "owner@example.com", tc.replyTo, tc.msg, "contact_email.html").Return(tc.sendErr).Once()

			s := newTestService(nil, mockMailer)
			defer s.Close()

			err := s.SendContactMessage(context.Background(), tc.msg)
			if tc.sendErr != nil {
				var derr *DeliveryError
				require.ErrorAs(t, err, &derr)
				assert.ErrorIs(t, err, tc.sendErr)
				assert.Equal(t, tc.sendErr.Error(), derr.Error())
			} else {
				assert.NoError(t, err)
			}

			mockMailer.AssertExpectations(t)
		})
	}
}

func TestSendContactMessage_CancelledContext(t *testing.T) {
	mockMailer := new(MockMailer)
	s := newTestService(nil, mockMailer)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SendContactMessage(ctx, ContactMessage{Name: "Ada"})

	var derr *DeliveryError
	assert.ErrorAs(t, err, &derr)
	mockMailer.AssertNotCalled(t, "send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConsumeCommentEvents(t *testing.T) {
	event := common.CommentCreatedEvent{PostID: 7, PostTitle: "First Post", Author: "Grace", Text: "Nice"}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		failures int
		calls    int
	}{
		{name: "sent first time", failures: 0, calls: 1},
		{name: "sent after retries", failures: 2, calls: 3},
		{name: "gives up", failures: maxRetries, calls: maxRetries},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockMC := &MockMessageConsumer{deliveries: make(chan amqp.Delivery, 1)}
			mockMC.On("Consume", common.CommentCreatedKey, common.BlogExchange, common.CommentCreatedQueue).Return(nil)

			mockMailer := new(MockMailer)
			if tc.failures > 0 {
				mockMailer.On("send", "owner@example.com", "", event, "comment_email.html").Return(errors.New("unavailable")).Times(tc.failures)
			}
			if tc.calls > tc.failures {
				mockMailer.On("send", "owner@example.com", "", event, "comment_email.html").Return(nil).Once()
			}

			done := make(chan struct{})
			ack := new(MockAcknowledger)
			ack.On("Ack", uint64(1), false).Return(nil).Run(func(mock.Arguments) { close(done) })

			s := newTestService(mockMC, mockMailer)
			defer s.Close()

			require.NoError(t, s.ConsumeCommentEvents())
			mockMC.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}

			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("delivery was not acknowledged")
			}

			mockMC.AssertExpectations(t)
			mockMailer.AssertNumberOfCalls(t, "send", tc.calls)
			ack.AssertExpectations(t)
		})
	}
}

func TestConsumeCommentEvents_BadPayload(t *testing.T) {
	mockMC := &MockMessageConsumer{deliveries: make(chan amqp.Delivery, 1)}
	mockMC.On("Consume", common.CommentCreatedKey, common.BlogExchange, common.CommentCreatedQueue).Return(nil)
	mockMailer := new(MockMailer)

	done := make(chan struct{})
	ack := new(MockAcknowledger)
	ack.On("Ack", uint64(3), false).Return(nil).Run(func(mock.Arguments) { close(done) })

	s := newTestService(mockMC, mockMailer)
	defer s.Close()

	require.NoError(t, s.ConsumeCommentEvents())
	mockMC.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte("{not json")}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("delivery was not acknowledged")
	}

	mockMailer.AssertNotCalled(t, "send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConsumeCommentEvents_NoConsumer(t *testing.T) {
	s := newTestService(nil, new(MockMailer))
	defer s.Close()

	assert.Error(t, s.ConsumeCommentEvents())
}

func TestConsumeCommentEvents_ConsumeError(t *testing.T) {
	mockMC := &MockMessageConsumer{}
	mockMC.On("Consume", common.CommentCreatedKey, common.BlogExchange, common.CommentCreatedQueue).Return(errors.New("channel closed"))

	s := newTestService(mockMC, new(MockMailer))
	defer s.Close()

	assert.Error(t, s.ConsumeCommentEvents())
}

func TestConsumeCommentEvents_RabbitMQ(t *testing.T) {
	uri := common.TestRabbitMQ(t)

	mb, err := common.NewMessageBroker(uri)
	require.NoError(t, err)
	t.Cleanup(func() { mb.Close() })
	require.NoError(t, common.SetupBlogExchange(mb))

	event := common.CommentCreatedEvent{PostID: 1, PostTitle: "First Post", Author: "Grace", Text: "Nice"}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	sent := make(chan struct{})
	mockMailer := new(MockMailer)
	mockMailer.On("send", "owner@example.com", "", event, "comment_email.html").Return(nil).Run(func(mock.Arguments) { close(sent) }).Once()

	s := newTestService(mb, mockMailer)
	defer s.Close()

	require.NoError(t, s.ConsumeCommentEvents())
	require.NoError(t, mb.Publish(context.Background(), body, common.CommentCreatedKey, common.BlogExchange))

	select {
	case <-sent:
	case <-time.After(10 * time.Second):
		t.Fatal("comment notification was not sent")
	}
}
