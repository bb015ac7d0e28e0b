package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseWise/pkg/types/common"
)

// mockKafkaReader hands out queued messages, then blocks until canceled.
type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.closed = true
	return nil
}

func (m *mockKafkaReader) commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*common.ProducerMessage
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg *common.ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

func testConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "clausewise-worker",
		Topics:  []string{"analysis.requested"},
		RetryConfig: RetryConfig{
			MaxRetries:      2,
			RetryBackoff:    time.Millisecond,
			MaxRetryBackoff: 2 * time.Millisecond,
			DeadLetterTopic: "analysis.requested.dlq",
		},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	cfg := testConsumerConfig()
	assert.NoError(t, ValidateConsumerConfig(cfg))

	bad := cfg
	bad.Brokers = nil
	assert.Error(t, ValidateConsumerConfig(bad))

	bad = cfg
	bad.GroupID = ""
	assert.Error(t, ValidateConsumerConfig(bad))

	bad = cfg
	bad.Topics = nil
	assert.Error(t, ValidateConsumerConfig(bad))

	bad = cfg
	bad.StartOffset = "middle"
	assert.Error(t, ValidateConsumerConfig(bad))

	bad = cfg
	bad.RetryConfig.MaxRetries = -1
	assert.Error(t, ValidateConsumerConfig(bad))
}

func TestConsumer_ProcessesAndCommits(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{
		{Topic: "analysis.requested", Offset: 1, Value: []byte("a"), Headers: []kafka.Header{{Key: "event_type", Value: []byte("analysis.requested")}}},
		{Topic: "analysis.requested", Offset: 2, Value: []byte("b")},
	}}
	c := NewConsumerWithReader(reader, nil, testConsumerConfig(), nil)

	var handled int32
	var header atomic.Value
	c.Subscribe("analysis.requested", func(_ context.Context, msg *common.Message) error {
		if msg.Offset == 1 {
			header.Store(msg.Headers["event_type"])
		}
		atomic.AddInt32(&handled, 1)
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return reader.commits() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(2), atomic.LoadInt32(&handled))
	assert.Equal(t, "analysis.requested", header.Load())
	processed, failed, dead := c.Stats()
	assert.Equal(t, int64(2), processed)
	assert.Zero(t, failed)
	assert.Zero(t, dead)
	assert.True(t, reader.closed)
	assert.False(t, c.Running())
}

func TestConsumer_RetriesThenDeadLetters(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{
		{Topic: "analysis.requested", Offset: 7, Key: []byte("r1"), Value: []byte("job")},
	}}
	dlq := &recordingPublisher{}
	c := NewConsumerWithReader(reader, dlq, testConsumerConfig(), nil)

	var calls int32
	c.Subscribe("analysis.requested", func(context.Context, *common.Message) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("archive missing")
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return reader.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Equal(t, 1, dlq.count())
	dl := dlq.msgs[0]
	assert.Equal(t, "analysis.requested.dlq", dl.Topic)
	assert.Equal(t, []byte("r1"), dl.Key)
	assert.Equal(t, "analysis.requested", dl.Headers[HeaderOriginalTopic])
	assert.Equal(t, "archive missing", dl.Headers[HeaderErrorMessage])
	assert.Equal(t, "3", dl.Headers[HeaderAttempts])

	_, _, dead := c.Stats()
	assert.Equal(t, int64(1), dead)
}

func TestConsumer_RecoversOnRetry(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{{Topic: "analysis.requested", Value: []byte("job")}}}
	dlq := &recordingPublisher{}
	c := NewConsumerWithReader(reader, dlq, testConsumerConfig(), nil)

	var calls int32
	c.Subscribe("analysis.requested", func(context.Context, *common.Message) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return reader.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Zero(t, dlq.count())
}

func TestConsumer_HandlerTimeout(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{{Topic: "analysis.requested", Value: []byte("job")}}}
	cfg := testConsumerConfig()
	cfg.HandlerTimeout = 10 * time.Millisecond
	cfg.RetryConfig.MaxRetries = 0
	dlq := &recordingPublisher{}
	c := NewConsumerWithReader(reader, dlq, cfg, nil)

	c.Subscribe("analysis.requested", func(ctx context.Context, _ *common.Message) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return dlq.count() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.Equal(t, context.DeadlineExceeded.Error(), dlq.msgs[0].Headers[HeaderErrorMessage])
}

func TestConsumer_UnknownTopicCommitted(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{{Topic: "other", Value: []byte("x")}}}
	c := NewConsumerWithReader(reader, nil, testConsumerConfig(), nil)

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return reader.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

//Personal.AI order the ending
