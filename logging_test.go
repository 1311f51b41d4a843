package gochan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelLogsDiscardOnReceiveClose(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	tx, rx := NewUnbounded[int](WithName("logged"), WithLogrus(logger))
	defer tx.Close()
	require.NotEmpty(t, hook.AllEntries(), "creation is logged at debug")

	require.NoError(t, tx.Send(1))
	require.NoError(t, tx.Send(2))
	require.NoError(t, rx.Close())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "logged", entry.Data["channel"])
	assert.Contains(t, entry.Message, "discarded 2")
}

func TestChannelLogsSendClose(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	tx, rx := NewUnbounded[int](WithLogrus(logger))
	defer rx.Close()
	require.NoError(t, tx.Close())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, rx.ID(), entry.Data["channel"])
	assert.Contains(t, entry.Message, "send side closed")
}

func TestNopLoggerIsSilent(t *testing.T) {
	tx, rx := NewUnbounded[int](WithLogger(NopLogger()))
	require.NoError(t, tx.Send(1))
	require.NoError(t, rx.Close())
	require.NoError(t, tx.Close())
}

// hasEntry reports whether hook saw an entry containing msg with the given
// component field.
func hasEntry(hook *test.Hook, component, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Data["component"] == component && strings.Contains(e.Message, msg) {
			return true
		}
	}
	return false
}

func TestWorkerPoolLogsThroughChannelLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()

	pool, err := NewWorkerPool(1,
		func(_ context.Context, j int) (int, error) {
			panic("bad job")
		},
		WithPoolName[int, int]("logged"),
		WithChannelOptions[int, int](WithLogrus(logger)))
	require.NoError(t, err)
	defer pool.Stop()

	require.NoError(t, pool.Submit(1))
	msg := recvOrFail(t, pool.Results())
	assert.ErrorIs(t, msg.Error, ErrJobPanicked)

	assert.True(t, hasEntry(hook, "logged", "job panicked"))
}

func TestReaderLogsReadErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	reader := NewReader(func() (int, error) {
		return 0, errors.New("boom")
	}, WithReaderLogger[int](NewLogrusLogger(logger)))
	defer reader.OutputChan().Close()

	msg := recvOrFail(t, reader.OutputChan())
	assert.EqualError(t, msg.Error, "boom")
	withTimeout(t, reader.Done())

	assert.True(t, hasEntry(hook, "reader", "read error: boom"))
	assert.True(t, hasEntry(hook, "reader", "stopped"))
}

func TestMapperAndReducerLoggers(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	l := NewLogrusLogger(logger)

	inTx, inRx := NewUnbounded[int]()
	outTx, outRx := NewUnbounded[int]()
	defer outRx.Close()
	mapper := NewPipe(inRx, outTx, WithMapperLogger[int, int](l))
	require.NoError(t, inTx.Close())
	withTimeout(t, mapper.Done())

	reducer := NewIDReducer[int](nil, nil, WithReducerLogger[int, []int, []int](l))
	require.NoError(t, reducer.Stop())

	assert.True(t, hasEntry(hook, "mapper", "started"))
	assert.True(t, hasEntry(hook, "mapper", "stopped"))
	assert.True(t, hasEntry(hook, "reducer", "stopped"))
}
