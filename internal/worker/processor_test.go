package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/predict_admin_server/internal/pkg/email"
	"github.com/qs3c/predict_admin_server/internal/pkg/queue"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*email.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg *email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

type recordedResult struct {
	id  string
	err error
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []recordedResult
	err     error
	done    chan struct{}
}

func (f *fakeRecorder) MarkEmailResult(ctx context.Context, id string, sendErr error) error {
	f.mu.Lock()
	f.results = append(f.results, recordedResult{id: id, err: sendErr})
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return f.err
}

func TestNewProcessor(t *testing.T) {
	processor := NewProcessor(nil, nil, nil)

	assert.NotNil(t, processor)
	assert.NotNil(t, processor.log)
}

func TestProcessor_Process_Success(t *testing.T) {
	sender := &fakeSender{}
	recorder := &fakeRecorder{}
	processor := NewProcessor(sender, recorder, nil)

	err := processor.Process(context.Background(), &queue.EmailJob{
		NotificationID: "n1",
		Subject:        "Maintenance",
		Message:        "Ligne 1\nLigne 2",
		ImageURL:       "https://cdn.predict.app/x.png",
		EnqueuedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Maintenance", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "Ligne 1<br>Ligne 2")
	assert.Contains(t, sender.sent[0].HTML, "https://cdn.predict.app/x.png")

	require.Len(t, recorder.results, 1)
	assert.Equal(t, "n1", recorder.results[0].id)
	assert.NoError(t, recorder.results[0].err)
}

func TestProcessor_Process_SendFailure(t *testing.T) {
	sendErr := errors.New("brevo: 401")
	recorder := &fakeRecorder{}
	processor := NewProcessor(&fakeSender{err: sendErr}, recorder, nil)

	err := processor.Process(context.Background(), &queue.EmailJob{NotificationID: "n2", Subject: "s"})
	require.NoError(t, err)

	require.Len(t, recorder.results, 1)
	assert.ErrorIs(t, recorder.results[0].err, sendErr)
}

func TestProcessor_Process_RecordFailure(t *testing.T) {
	processor := NewProcessor(&fakeSender{}, &fakeRecorder{err: errors.New("not found")}, nil)

	err := processor.Process(context.Background(), &queue.EmailJob{NotificationID: "missing"})
	assert.Error(t, err)
}

func TestProcessor_Run_ConsumesQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	q := queue.NewQueue(rdb, "test:email_jobs")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Push(ctx, &queue.EmailJob{NotificationID: "n1", Subject: "a"}))
	require.NoError(t, q.Push(ctx, &queue.EmailJob{NotificationID: "n2", Subject: "b"}))

	sender := &fakeSender{}
	recorder := &fakeRecorder{done: make(chan struct{}, 2)}
	processor := NewProcessor(sender, recorder, nil)

	finished := make(chan struct{})
	go func() {
		processor.Run(ctx, q, 2)
		close(finished)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-recorder.done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	cancel()
	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("workers did not stop")
	}

	ids := []string{recorder.results[0].id, recorder.results[1].id}
	assert.ElementsMatch(t, []string{"n1", "n2"}, ids)
	assert.Len(t, sender.sent, 2)
}
