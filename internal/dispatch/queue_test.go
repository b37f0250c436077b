package dispatch_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/mobile-signup/internal/dispatch"
	"github.com/ErlanBelekov/mobile-signup/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []dispatch.Job
	ok    bool
	block chan struct{} // when non-nil, Send waits for it to close
}

func (s *recordingSender) Send(_ context.Context, to, code string) bool {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, dispatch.Job{MobileNumber: to, Code: code})
	return s.ok
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func runQueue(q *dispatch.Queue) (cancel func()) {
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Start(ctx)
		close(done)
	}()
	return func() {
		stop()
		<-done
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

func TestQueue_DeliversEnqueuedJobs(t *testing.T) {
	sender := &recordingSender{ok: true}
	q := dispatch.NewQueue(sender, slog.Default(), 2, 10, time.Second)
	stop := runQueue(q)
	defer stop()

	before := testutil.ToFloat64(metrics.SMSDispatchTotal.WithLabelValues("sent"))

	if !q.Enqueue(dispatch.Job{MobileNumber: "+919876543210", Code: "482913"}) {
		t.Fatal("enqueue rejected")
	}
	waitFor(t, func() bool { return sender.count() == 1 })

	if got := sender.sent[0]; got.MobileNumber != "+919876543210" || got.Code != "482913" {
		t.Errorf("sent %+v", got)
	}
	waitFor(t, func() bool {
		return testutil.ToFloat64(metrics.SMSDispatchTotal.WithLabelValues("sent")) == before+1
	})
}

func TestQueue_FailureIsCountedNotRetried(t *testing.T) {
	sender := &recordingSender{ok: false}
	q := dispatch.NewQueue(sender, slog.Default(), 1, 10, time.Second)
	stop := runQueue(q)

	before := testutil.ToFloat64(metrics.SMSDispatchTotal.WithLabelValues("failed"))
	q.Enqueue(dispatch.Job{MobileNumber: "+919876543210", Code: "482913"})
	waitFor(t, func() bool {
		return testutil.ToFloat64(metrics.SMSDispatchTotal.WithLabelValues("failed")) == before+1
	})
	stop()

	if sender.count() != 1 {
		t.Errorf("sender called %d times, want exactly 1", sender.count())
	}
}

func TestQueue_FullBufferDropsWithoutBlocking(t *testing.T) {
	q := dispatch.NewQueue(&recordingSender{ok: true}, slog.Default(), 1, 1, time.Second)

	if !q.Enqueue(dispatch.Job{MobileNumber: "+919876543210", Code: "111111"}) {
		t.Fatal("first enqueue rejected")
	}
	if q.Enqueue(dispatch.Job{MobileNumber: "+919876543211", Code: "222222"}) {
		t.Error("second enqueue accepted into a full queue")
	}
}

func TestQueue_ShutdownDrainsBufferedJobs(t *testing.T) {
	sender := &recordingSender{ok: true}
	q := dispatch.NewQueue(sender, slog.Default(), 1, 10, time.Second)

	for i := 0; i < 3; i++ {
		q.Enqueue(dispatch.Job{MobileNumber: "+919876543210", Code: "482913"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q.Start(ctx)

	if sender.count() != 3 {
		t.Errorf("sent %d jobs after shutdown, want 3", sender.count())
	}
}

func TestQueue_HungSendTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	sender := &recordingSender{ok: true, block: release}
	q := dispatch.NewQueue(sender, slog.Default(), 1, 10, 20*time.Millisecond)
	stop := runQueue(q)
	defer stop()

	before := testutil.ToFloat64(metrics.SMSDispatchTotal.WithLabelValues("timeout"))
	q.Enqueue(dispatch.Job{MobileNumber: "+919876543210", Code: "482913"})

	waitFor(t, func() bool {
		return testutil.ToFloat64(metrics.SMSDispatchTotal.WithLabelValues("timeout")) == before+1
	})
}
