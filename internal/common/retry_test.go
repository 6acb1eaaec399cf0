package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	},
		WithMaxRetries(5),
		WithInitialDelay(time.Millisecond),
	)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	wanted := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return wanted
	},
		WithMaxRetries(2),
		WithInitialDelay(time.Millisecond),
	)

	assert.Error(t, err)
	assert.ErrorIs(t, err, wanted)
	// 首次尝试 + 2 次重试
	assert.Equal(t, 3, calls)
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- Do(ctx, func() error {
			calls++
			return errors.New("keep retrying")
		},
			WithMaxRetries(10),
			WithInitialDelay(time.Second),
		)
	}()

	// 第一次失败后在退避等待中取消
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not abort after context cancellation")
	}
}

func TestDo_NilFunction(t *testing.T) {
	err := Do(context.Background(), nil)
	assert.Error(t, err)
}

func TestDo_BackoffCappedAtMaxDelay(t *testing.T) {
	cfg := defaultConfig()
	cfg.initialDelay = time.Second
	cfg.maxDelay = 3 * time.Second
	cfg.multiplier = 10

	assert.Equal(t, time.Second, backoffDelay(1, cfg))
	assert.Equal(t, 3*time.Second, backoffDelay(2, cfg))
	assert.Equal(t, 3*time.Second, backoffDelay(5, cfg))
}

func TestDo_ZeroRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return errors.New("fail")
	}, WithMaxRetries(0))

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
