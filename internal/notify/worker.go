package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/notify/platforms"
)

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case job := <-m.dispatchCh:
			metricNotifyQueueLen.Set(int64(len(m.dispatchCh)))
			m.processJob(ctx, job)
		}
	}
}

func (m *Manager) processJob(ctx context.Context, job pushJob) {
	key := job.key()
	if !m.beforeSend(key) {
		metricNotifyDroppedTotal.Add(1)
		return
	}

	adapter, ok := m.adapters[job.Target.Platform]
	if !ok {
		metricNotifyFailedTotal.Add(1)
		log.Warn().Str("platform", job.Target.Platform).Msg("no adapter for notify target")
		return
	}

	err := adapter.Send(ctx, job.Target.Endpoint, job.Target.Secret, toPlatformMessage(job.Formatted))
	if err != nil {
		m.afterFailure(key)
		metricNotifyFailedTotal.Add(1)
		m.retryOrDrop(job, err)
		return
	}
	m.afterSuccess(key)
	metricNotifySentTotal.Add(1)
}

func (m *Manager) retryOrDrop(job pushJob, err error) {
	job.Attempt++
	if job.Attempt > m.cfg.RetryMax {
		metricNotifyRetryDroppedTotal.Add(1)
		log.Warn().Err(err).
			Str("platform", job.Target.Platform).
			Str("event", string(job.Event.Kind)).
			Int("attempts", job.Attempt).
			Msg("notification dropped after retries")
		return
	}
	delay := m.cfg.RetryBase * time.Duration(1<<(job.Attempt-1))
	metricNotifyRetryTotal.Add(1)
	m.retryQ.Enqueue(job, delay)
}

// beforeSend reports whether the target's circuit allows a send attempt.
func (m *Manager) beforeSend(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.breakerByKey[key]
	if st.openUntil.IsZero() || time.Now().After(st.openUntil) {
		return true
	}
	return false
}

func (m *Manager) afterFailure(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.breakerByKey[key]
	st.consecutiveFailures++
	if st.consecutiveFailures >= m.cfg.FailureThreshold {
		st.openUntil = time.Now().Add(m.cfg.CircuitOpenDuration)
		st.consecutiveFailures = 0
		metricNotifyCircuitOpenTotal.Add(1)
		log.Warn().Str("target", key).Msg("notify circuit opened")
	}
	m.breakerByKey[key] = st
}

func (m *Manager) afterSuccess(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.breakerByKey, key)
}

func toPlatformMessage(msg Message) platforms.Message {
	out := platforms.Message{
		Title:       msg.Title,
		Content:     msg.Content,
		Description: msg.Description,
		Color:       msg.Color,
		Timestamp:   msg.Timestamp,
		Footer:      msg.Footer,
	}
	for _, f := range msg.Fields {
		out.Fields = append(out.Fields, platforms.Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}
