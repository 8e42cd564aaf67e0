package mailservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/luanbartole/powerblog/internal/common"
)

const (
	maxRetries       = 5
	defaultBaseDelay = 500 * time.Millisecond
)

// NewMailService returns the notification sender. mb may be nil when comment
// events are disabled.
func NewMailService(mb common.MessageConsumer, cfg Config, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Sender, cfg.Timeout, NewTemplate()),
		recipient: cfg.Recipient,
		logger:    logger,
		baseDelay: defaultBaseDelay,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SendContactMessage relays a contact form submission to the site owner. Any
// transport failure is returned as a *DeliveryError and is not retried.
func (s *MailService) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return &DeliveryError{Err: err}
	}

	var replyTo string
	if common.IsEmail(msg.Email) {
		replyTo = msg.Email
	}

	err := s.m.send(s.recipient, replyTo, msg, "contact_email.html")
	if err != nil {
		return &DeliveryError{Err: err}
	}

	s.logger.Info("contact message sent", slog.String("name", msg.Name))

	return nil
}

// ConsumeCommentEvents emails the site owner for every comment.created event
// until Close is called. Deliveries are acked whether or not the email went out.
func (s *MailService) ConsumeCommentEvents() error {
	if s.mb == nil {
		return errors.New("no message consumer configured")
	}

	msgs, err := s.mb.Consume(common.CommentCreatedKey, common.BlogExchange, common.CommentCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return err
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var event common.CommentCreatedEvent

				err := json.Unmarshal(msg.Body, &event)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					msg.Ack(false)
					continue
				}

				if s.sendWithBackoff(event) {
					s.logger.Info("comment notification sent", slog.Int("post_id", event.PostID))
				} else {
					s.logger.Error("could not send comment notification", slog.Int("post_id", event.PostID))
				}
				msg.Ack(false)

			case <-s.ctx.Done():
				s.logger.Info("stopping ConsumeCommentEvents due to context cancellation")
				return
			}
		}
	}()

	return nil
}

// sendWithBackoff retries with exponential backoff and full jitter.
func (s *MailService) sendWithBackoff(event common.CommentCreatedEvent) bool {
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := s.m.send(s.recipient, "", event, "comment_email.html")
		if err == nil {
			return true
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying comment notification", slog.Int("post_id", event.PostID), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return false
		}
	}

	return false
}

func (s *MailService) Close() {
	s.cancel()
}
