package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/messagely/server/internal/logger"
	"github.com/messagely/server/internal/models"
)

var (
	// ErrMessageNotFound is returned when the referenced message does not exist.
	ErrMessageNotFound = errors.New("message does not exist")
	// ErrNotAllowed is returned when the acting user is not an endpoint
	// of the message, or not the recipient for a read-mark.
	ErrNotAllowed = errors.New("not authorized")
)

// MessageReader defines read operations for single messages.
type MessageReader interface {
	GetByID(ctx context.Context, id int64) (*models.MessageDetail, error)
}

// MessageWriter defines write operations for messages.
type MessageWriter interface {
	Save(ctx context.Context, fromUsername, toUsername, body string) (*models.MessageDB, error)
	MarkRead(ctx context.Context, id int64) (*models.MessageRead, error)
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// MessageEvent is published to Kafka after message writes.
type MessageEvent struct {
	Type         string    `json:"type"` // "message.sent" or "message.read"
	MessageID    int64     `json:"message_id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	At           time.Time `json:"at"`
}

// MessageService handles sending, reading and read-marking messages,
// enforcing the ownership rules.
type MessageService struct {
	reader      MessageReader
	writer      MessageWriter
	users       UserReader
	kafkaWriter KafkaWriter
}

// NewMessageService creates a new MessageService.
func NewMessageService(reader MessageReader, writer MessageWriter, users UserReader, kafkaWriter KafkaWriter) *MessageService {
	return &MessageService{
		reader:      reader,
		writer:      writer,
		users:       users,
		kafkaWriter: kafkaWriter,
	}
}

// publishEvent publishes a message event to Kafka.
func (svc *MessageService) publishEvent(ctx context.Context, event MessageEvent) {
	if svc.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "message_id", event.MessageID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal event for Kafka", "message_id", event.MessageID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.MessageID, 10)),
		Value: data,
	}

	if err := svc.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish event to Kafka", "message_id", event.MessageID, "error", err)
	} else {
		logger.Log.Infow("event published to Kafka", "type", event.Type, "message_id", event.MessageID)
	}
}

// Send creates a message from one user to another.
func (svc *MessageService) Send(ctx context.Context, fromUsername, toUsername, body string) (*models.MessageDB, error) {
	recipient, err := svc.users.GetByUsername(ctx, toUsername)
	if err != nil {
		logger.Log.Errorw("failed to get recipient", "err", err)
		return nil, err
	}
	if recipient == nil {
		return nil, ErrUserNotFound
	}

	msg, err := svc.writer.Save(ctx, fromUsername, toUsername, body)
	if err != nil {
		logger.Log.Errorw("failed to save message", "err", err)
		return nil, err
	}

	svc.publishEvent(ctx, MessageEvent{
		Type:         "message.sent",
		MessageID:    msg.ID,
		FromUsername: msg.FromUsername,
		ToUsername:   msg.ToUsername,
		At:           msg.SentAt,
	})

	return msg, nil
}

// Get returns message detail to the acting user, who must be either
// the sender or the recipient.
func (svc *MessageService) Get(ctx context.Context, actor string, id int64) (*models.MessageDetail, error) {
	msg, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get message", "id", id, "err", err)
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	if actor != msg.FromUser.Username && actor != msg.ToUser.Username {
		logger.Log.Infow("message access denied", "id", id, "actor", actor)
		return nil, ErrNotAllowed
	}

	return msg, nil
}

// MarkRead stamps the message's read_at. Only the recipient may do
// this; the first mark wins and re-marking returns the original
// timestamp.
func (svc *MessageService) MarkRead(ctx context.Context, actor string, id int64) (*models.MessageRead, error) {
	msg, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get message", "id", id, "err", err)
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	if actor != msg.ToUser.Username {
		logger.Log.Infow("read-mark denied", "id", id, "actor", actor)
		return nil, ErrNotAllowed
	}

	read, err := svc.writer.MarkRead(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to mark message read", "id", id, "err", err)
		return nil, err
	}
	if read == nil {
		return nil, ErrMessageNotFound
	}

	svc.publishEvent(ctx, MessageEvent{
		Type:         "message.read",
		MessageID:    read.ID,
		FromUsername: msg.FromUser.Username,
		ToUsername:   msg.ToUser.Username,
		At:           read.ReadAt,
	})

	return read, nil
}
