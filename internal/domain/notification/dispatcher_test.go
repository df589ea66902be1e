package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/servicehub/booking-api/internal/domain/booking"
	"github.com/servicehub/booking-api/internal/domain/profile"
)

func sampleEvent() booking.BookingStatusChanged {
	return booking.BookingStatusChanged{
		EventID:    uuid.New(),
		BookingID:  12,
		ProviderID: 3,
		UserID:     8,
		From:       booking.StatusPending,
		To:         booking.StatusInProgress,
		Action:     booking.ActionAccept,
		ActorRole:  profile.RoleProvider,
		OccurredAt: time.Now().UTC(),
	}
}

func TestRedisDispatcherEnqueuesAndPublishes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(QueueKey, `"booking_id":12`).SetVal(1)
	mock.Regexp().ExpectPublish(LiveChannel, `"to":2`).SetVal(1)

	err := NewRedisDispatcher(db).Dispatch(context.Background(), sampleEvent())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDispatcherQueueFailure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(QueueKey, `.*`).SetErr(errors.New("redis down"))

	err := NewRedisDispatcher(db).Dispatch(context.Background(), sampleEvent())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDispatcherPublishFailureIsNotFatal(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(QueueKey, `.*`).SetVal(1)
	mock.Regexp().ExpectPublish(LiveChannel, `.*`).SetErr(errors.New("no subscribers"))

	err := NewRedisDispatcher(db).Dispatch(context.Background(), sampleEvent())

	assert.NoError(t, err)
}

func TestLogDispatcher(t *testing.T) {
	assert.NoError(t, LogDispatcher{}.Dispatch(context.Background(), sampleEvent()))
}
