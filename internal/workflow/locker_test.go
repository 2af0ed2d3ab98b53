package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockerTimesOutWithConcurrencyConflict(t *testing.T) {
	locks := NewLocker(20 * time.Millisecond)
	key := uuid.New()

	unlock, err := locks.Lock(context.Background(), key)
	require.NoError(t, err)

	_, err = locks.Lock(context.Background(), key)
	assert.True(t, errors.Is(err, ErrConcurrencyConflict))
	assert.True(t, Retryable(err))

	unlock()
	unlock()

	again, err := locks.Lock(context.Background(), key)
	require.NoError(t, err)
	again()
	assert.Empty(t, locks.slots)
}

func TestLockerKeysAreIndependent(t *testing.T) {
	locks := NewLocker(20 * time.Millisecond)

	first, err := locks.Lock(context.Background(), uuid.New())
	require.NoError(t, err)
	defer first()

	second, err := locks.Lock(context.Background(), uuid.New())
	require.NoError(t, err)
	second()
}

func TestLockerHonoursContext(t *testing.T) {
	locks := NewLocker(time.Minute)
	key := uuid.New()

	unlock, err := locks.Lock(context.Background(), key)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locks.Lock(ctx, key)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLockerHandsOverToWaiter(t *testing.T) {
	locks := NewLocker(time.Second)
	key := uuid.New()

	unlock, err := locks.Lock(context.Background(), key)
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		next, err := locks.Lock(context.Background(), key)
		if err == nil {
			next()
		}
		acquired <- err
	}()

	time.Sleep(10 * time.Millisecond)
	unlock()
	require.NoError(t, <-acquired)
}
