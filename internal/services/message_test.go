package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/messagely/server/internal/models"
	"github.com/messagely/server/internal/services"
)

func fixedMessageDetail() *models.MessageDetail {
	return &models.MessageDetail{
		ID:     1,
		Body:   "hi",
		SentAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		FromUser: models.UserProfile{
			Username:  "bob",
			FirstName: "Bob",
			LastName:  "Brown",
		},
		ToUser: models.UserProfile{
			Username:  "alice",
			FirstName: "Alice",
			LastName:  "Anderson",
		},
	}
}

func TestMessageService_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockMessageReader(ctrl)
	mockWriter := services.NewMockMessageWriter(ctrl)
	mockUsers := services.NewMockUserReader(ctrl)

	svc := services.NewMessageService(mockReader, mockWriter, mockUsers, nil)

	sent := &models.MessageDB{
		ID:           1,
		FromUsername: "bob",
		ToUsername:   "alice",
		Body:         "hi",
		SentAt:       time.Now(),
	}

	tests := []struct {
		name      string
		recipient *models.UserDB
		saveErr   error
		want      *models.MessageDB
		wantErr   error
	}{
		{
			name:      "message created",
			recipient: &models.UserDB{Username: "alice"},
			want:      sent,
		},
		{
			name:    "unknown recipient",
			wantErr: services.ErrUserNotFound,
		},
		{
			name:      "save error",
			recipient: &models.UserDB{Username: "alice"},
			saveErr:   errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers.EXPECT().
				GetByUsername(gomock.Any(), "alice").
				Return(tt.recipient, nil)

			if tt.recipient != nil {
				mockWriter.EXPECT().
					Save(gomock.Any(), "bob", "alice", "hi").
					Return(tt.want, tt.saveErr)
			}

			msg, err := svc.Send(context.Background(), "bob", "alice", "hi")
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, msg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, msg)
				// read_at must start out null
				assert.Nil(t, msg.ReadAt)
			}
		})
	}
}

func TestMessageService_Send_PublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockMessageReader(ctrl)
	mockWriter := services.NewMockMessageWriter(ctrl)
	mockUsers := services.NewMockUserReader(ctrl)
	mockKafka := services.NewMockKafkaWriter(ctrl)

	svc := services.NewMessageService(mockReader, mockWriter, mockUsers, mockKafka)

	sent := &models.MessageDB{ID: 7, FromUsername: "bob", ToUsername: "alice", Body: "hi", SentAt: time.Now()}

	mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(&models.UserDB{Username: "alice"}, nil)
	mockWriter.EXPECT().Save(gomock.Any(), "bob", "alice", "hi").Return(sent, nil)
	mockKafka.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
			assert.Len(t, msgs, 1)
			assert.Equal(t, []byte("7"), msgs[0].Key)

			var event services.MessageEvent
			assert.NoError(t, json.Unmarshal(msgs[0].Value, &event))
			assert.Equal(t, "message.sent", event.Type)
			assert.Equal(t, int64(7), event.MessageID)
			assert.Equal(t, "bob", event.FromUsername)
			assert.Equal(t, "alice", event.ToUsername)
			return nil
		})

	_, err := svc.Send(context.Background(), "bob", "alice", "hi")
	assert.NoError(t, err)
}

func TestMessageService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockMessageReader(ctrl)
	mockWriter := services.NewMockMessageWriter(ctrl)
	mockUsers := services.NewMockUserReader(ctrl)

	svc := services.NewMessageService(mockReader, mockWriter, mockUsers, nil)

	detail := fixedMessageDetail()

	// Against a fixed message from bob to alice, every identity is checked.
	tests := []struct {
		name    string
		actor   string
		msg     *models.MessageDetail
		wantErr error
	}{
		{
			name:  "sender may read",
			actor: "bob",
			msg:   detail,
		},
		{
			name:  "recipient may read",
			actor: "alice",
			msg:   detail,
		},
		{
			name:    "third party may not read",
			actor:   "carol",
			msg:     detail,
			wantErr: services.ErrNotAllowed,
		},
		{
			name:    "unknown message",
			actor:   "alice",
			wantErr: services.ErrMessageNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByID(gomock.Any(), int64(1)).
				Return(tt.msg, nil)

			msg, err := svc.Get(context.Background(), tt.actor, 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, msg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.msg, msg)
			}
		})
	}
}

func TestMessageService_MarkRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockMessageReader(ctrl)
	mockWriter := services.NewMockMessageWriter(ctrl)
	mockUsers := services.NewMockUserReader(ctrl)

	svc := services.NewMessageService(mockReader, mockWriter, mockUsers, nil)

	detail := fixedMessageDetail()
	readAt := time.Date(2026, 2, 1, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		actor   string
		msg     *models.MessageDetail
		want    *models.MessageRead
		wantErr error
	}{
		{
			name:  "recipient marks read",
			actor: "alice",
			msg:   detail,
			want:  &models.MessageRead{ID: 1, ReadAt: readAt},
		},
		{
			name:    "sender may not mark read",
			actor:   "bob",
			msg:     detail,
			wantErr: services.ErrNotAllowed,
		},
		{
			name:    "third party may not mark read",
			actor:   "carol",
			msg:     detail,
			wantErr: services.ErrNotAllowed,
		},
		{
			name:    "unknown message",
			actor:   "alice",
			wantErr: services.ErrMessageNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByID(gomock.Any(), int64(1)).
				Return(tt.msg, nil)

			if tt.msg != nil && tt.actor == tt.msg.ToUser.Username {
				mockWriter.EXPECT().
					MarkRead(gomock.Any(), int64(1)).
					Return(tt.want, nil)
			}

			read, err := svc.MarkRead(context.Background(), tt.actor, 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, read)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, read)
			}
		})
	}
}

func TestMessageService_MarkRead_PublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockMessageReader(ctrl)
	mockWriter := services.NewMockMessageWriter(ctrl)
	mockUsers := services.NewMockUserReader(ctrl)
	mockKafka := services.NewMockKafkaWriter(ctrl)

	svc := services.NewMessageService(mockReader, mockWriter, mockUsers, mockKafka)

	detail := fixedMessageDetail()
	readAt := time.Now()

	mockReader.EXPECT().GetByID(gomock.Any(), int64(1)).Return(detail, nil)
	mockWriter.EXPECT().MarkRead(gomock.Any(), int64(1)).Return(&models.MessageRead{ID: 1, ReadAt: readAt}, nil)
	mockKafka.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
			var event services.MessageEvent
			assert.NoError(t, json.Unmarshal(msgs[0].Value, &event))
			assert.Equal(t, "message.read", event.Type)
			assert.Equal(t, int64(1), event.MessageID)
			return nil
		})

	_, err := svc.MarkRead(context.Background(), "alice", 1)
	assert.NoError(t, err)
}
