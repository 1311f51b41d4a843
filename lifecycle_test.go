package gochan

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMapperClosedChan verifies that Mapper signals completion via ClosedChan
func TestMapperClosedChan(t *testing.T) {
	inTx, inRx := NewUnbounded[int]()
	outTx, outRx := NewUnbounded[int]()
	defer outRx.Close()

	mapper := NewMapper(inRx, outTx, func(i int) (int, bool, bool) {
		return i * 2, false, false
	})

	require.NoError(t, inTx.Send(1))
	require.NoError(t, inTx.Send(2))
	// Close input to trigger mapper completion
	require.NoError(t, inTx.Close())

	// Wait for completion signal
	select {
	case err := <-mapper.ClosedChan():
		if err != nil {
			t.Errorf("Expected nil error, got: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for Mapper to close")
	}
	assert.False(t, mapper.IsRunning())

	// end of stream propagates downstream
	var got []int
	for v := range outRx.All() {
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 4}, got)
}

// TestMapperOnDoneCallback verifies that Mapper calls its OnDone callback
func TestMapperOnDoneCallback(t *testing.T) {
	inTx, inRx := NewUnbounded[int]()
	outTx, outRx := NewUnbounded[int]()
	defer outRx.Close()

	var called atomic.Bool
	mapper := NewPipe(inRx, outTx, WithMapperOnDone(func(m *Mapper[int, int]) {
		called.Store(true)
	}))

	// Close input to trigger completion
	inTx.Close()

	// Wait for completion
	withTimeout(t, mapper.Done())

	if !called.Load() {
		t.Error("OnDone callback was not called")
	}
}

func TestMapperSkipAndStop(t *testing.T) {
	inTx, inRx := NewUnbounded[int]()
	outTx, outRx := NewUnbounded[int]()
	defer inTx.Close()
	defer outRx.Close()

	for i := 1; i <= 10; i++ {
		require.NoError(t, inTx.Send(i))
	}
	// keep odd values, stop at 7
	mapper := NewMapper(inRx, outTx, func(i int) (int, bool, bool) {
		return i, i%2 == 0, i == 7
	})
	withTimeout(t, mapper.Done())

	var got []int
	for v := range outRx.All() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 3, 5, 7}, got)

	// the mapper closed its input, so upstream is disconnected
	assert.ErrorIs(t, inTx.Send(11), ErrDisconnected)
}

func TestMapperStopInterruptsBlockedRecv(t *testing.T) {
	inTx, inRx := NewUnbounded[int]()
	outTx, outRx := NewUnbounded[int]()
	defer inTx.Close()
	defer outRx.Close()

	mapper := NewPipe(inRx, outTx)
	require.Eventually(t, func() bool { return inTx.Stats().BlockedReceivers == 1 },
		testTimeout, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- mapper.Stop() }()
	assert.NoError(t, withTimeout(t, done))
	assert.False(t, mapper.IsRunning())

	_, err := outRx.Recv()
	assert.ErrorIs(t, err, ErrDisconnected)
}

// TestFanInClosedChan verifies that FanIn signals completion via ClosedChan
func TestFanInClosedChan(t *testing.T) {
	fanin := NewFanIn[int](nil)
	defer fanin.OutputChan().Close()

	// Add some input channels
	in1Tx, in1 := NewUnbounded[int]()
	in2Tx, in2 := NewUnbounded[int]()
	require.NoError(t, fanin.Add(in1, in2))

	// Close inputs
	in1Tx.Close()
	in2Tx.Close()

	// Stop FanIn
	fanin.Stop()

	// Wait for completion signal
	select {
	case err := <-fanin.ClosedChan():
		if err != nil {
			t.Errorf("Expected nil error, got: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for FanIn to close")
	}

	_, err := fanin.OutputChan().Recv()
	assert.ErrorIs(t, err, ErrDisconnected)
	assert.ErrorIs(t, fanin.Add(in1), ErrHandleClosed)
}

func TestFanInMergesInputs(t *testing.T) {
	fanin := NewFanIn[int](nil)
	defer fanin.Stop()
	out := fanin.OutputChan()
	defer out.Close()

	var removed atomic.Int32
	fanin.OnChannelRemoved = func(fi *FanIn[int], input *Receiver[int]) {
		removed.Add(1)
	}

	in1Tx, in1 := NewUnbounded[int]()
	in2Tx, in2, err := NewBounded[int](1)
	require.NoError(t, err)
	require.NoError(t, fanin.Add(in1, in2))
	assert.Equal(t, 2, fanin.Count())

	go func() {
		defer in1Tx.Close()
		for i := 0; i < 5; i++ {
			in1Tx.Send(i)
		}
	}()
	go func() {
		defer in2Tx.Close()
		for i := 100; i < 105; i++ {
			in2Tx.Send(i)
		}
	}()

	got := make([]int, 0, 10)
	for len(got) < 10 {
		got = append(got, recvOrFail(t, out))
	}
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 100, 101, 102, 103, 104}, got)

	// drained inputs remove themselves
	require.Eventually(t, func() bool { return fanin.Count() == 0 }, testTimeout, time.Millisecond)
	assert.Equal(t, int32(2), removed.Load())
}

func TestFanInRemove(t *testing.T) {
	outTx, outRx := NewUnbounded[string]()
	defer outRx.Close()
	fanin := NewFanIn(outTx)

	inTx, in := NewUnbounded[string]()
	defer inTx.Close()
	require.NoError(t, fanin.Add(in))
	require.NoError(t, inTx.Send("before"))
	assert.Equal(t, "before", recvOrFail(t, outRx))

	var removedInput *Receiver[string]
	fanin.OnChannelRemoved = func(fi *FanIn[string], input *Receiver[string]) {
		removedInput = input
	}
	fanin.Remove(in)
	assert.Equal(t, 0, fanin.Count())
	assert.Same(t, in, removedInput)
	assert.ErrorIs(t, inTx.Send("after"), ErrDisconnected, "removed input receiver is closed")

	require.NoError(t, fanin.Stop())
	_, err := outRx.Recv()
	assert.ErrorIs(t, err, ErrDisconnected)
}

// TestReaderClosedChan verifies that a read error ends the Reader and is
// reported both as a Message and on ClosedChan
func TestReaderClosedChan(t *testing.T) {
	readErr := errors.New("boom")
	calls := 0
	reader := NewReader(func() (int, error) {
		calls++
		if calls > 3 {
			return 0, readErr
		}
		return calls, nil
	}, WithOutputBuffer[int](10))
	out := reader.OutputChan()
	defer out.Close()

	var values []int
	var lastErr error
	for msg := range out.All() {
		if msg.Error != nil {
			lastErr = msg.Error
			continue
		}
		values = append(values, msg.Value)
	}
	assert.Equal(t, []int{1, 2, 3}, values)
	assert.ErrorIs(t, lastErr, readErr)

	select {
	case err := <-reader.ClosedChan():
		assert.ErrorIs(t, err, readErr)
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for Reader to close")
	}
}

func TestReaderStopsWhenOutputClosed(t *testing.T) {
	var calls atomic.Int32
	var finished atomic.Bool
	reader := NewReader(func() (int, error) {
		return int(calls.Add(1)), nil
	}, WithReaderOnDone(func(r *Reader[int]) {
		finished.Store(true)
	}))

	out := reader.OutputChan()
	assert.Equal(t, 1, recvOrFail(t, out).Value)
	require.NoError(t, out.Close())

	withTimeout(t, reader.Done())
	assert.True(t, finished.Load())
	assert.False(t, reader.IsRunning())
}

// TestStandardizedNaming verifies OutputChan and InputChan work correctly
func TestStandardizedNaming(t *testing.T) {
	// Test Reader.OutputChan()
	t.Run("Reader.OutputChan", func(t *testing.T) {
		calls := 0
		reader := NewReader(func() (int, error) {
			calls++
			return calls, nil
		})

		count := 0
		for msg := range reader.OutputChan().All() {
			if count == 0 && msg.Value != 1 {
				t.Errorf("Expected 1, got %d", msg.Value)
			}
			count++
			if count >= 3 {
				break
			}
		}
		reader.Stop()
	})

	// Test Reducer.OutputChan() and InputChan()
	t.Run("Reducer.OutputChan/InputChan", func(t *testing.T) {
		reducer := NewIDReducer[int](nil, nil,
			WithFlushPeriod[int, []int, []int](50*time.Millisecond))
		defer reducer.Stop()

		// Send via InputChan
		reducer.InputChan().Send(1)
		reducer.InputChan().Send(2)
		reducer.InputChan().Send(3)

		// Receive via OutputChan
		batch := recvOrFail(t, reducer.OutputChan())
		if len(batch) == 0 {
			t.Error("Expected non-empty batch")
		}
	})

	// Test FanIn.OutputChan()
	t.Run("FanIn.OutputChan", func(t *testing.T) {
		fanin := NewFanIn[int](nil)
		defer fanin.Stop()

		in1Tx, in1, _ := NewBounded[int](1)
		fanin.Add(in1)

		in1Tx.Send(100)

		val := recvOrFail(t, fanin.OutputChan())
		if val != 100 {
			t.Errorf("Expected 100, got %d", val)
		}
	})
}
