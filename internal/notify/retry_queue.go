package notify

import "time"

// retryQueue re-enqueues failed jobs after a delay. Each entry holds its own
// timer; the done channel aborts pending retries on shutdown.
type retryQueue struct {
	out  chan<- pushJob
	done <-chan struct{}
}

func newRetryQueue(out chan<- pushJob, done <-chan struct{}) *retryQueue {
	return &retryQueue{out: out, done: done}
}

func (q *retryQueue) Enqueue(job pushJob, delay time.Duration) {
	time.AfterFunc(delay, func() {
		select {
		case <-q.done:
		case q.out <- job:
			metricNotifyQueueLen.Set(int64(len(q.out)))
		}
	})
}
