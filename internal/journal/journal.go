// Package journal mirrors the in-memory transaction ledger into Postgres so
// settlements survive restarts and can be analysed offline. The store stays
// authoritative; journaling is best-effort and never blocks a game command.
package journal

import (
	"context"
	"expvar"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/store"
)

var (
	metricJournalQueuedTotal  = expvar.NewInt("journal_queued_total")
	metricJournalWrittenTotal = expvar.NewInt("journal_written_total")
	metricJournalDroppedTotal = expvar.NewInt("journal_dropped_total")
	metricJournalErrorTotal   = expvar.NewInt("journal_error_total")
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS gauntlet_transactions (
	id          TEXT PRIMARY KEY,
	game_id     TEXT NOT NULL,
	player_id   TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL,
	amount      BIGINT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
)`

const insertSQL = `
INSERT INTO gauntlet_transactions (id, game_id, player_id, type, amount, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING`

const recentSQL = `
SELECT id, player_id, type, amount, description, created_at
FROM gauntlet_transactions
WHERE game_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

type record struct {
	gameID string
	tx     store.Transaction
}

// Journal owns a pgx pool and a single writer goroutine fed through a
// bounded queue. When the queue is full the oldest pending record is shed
// so a slow database cannot stall the game engine.
type Journal struct {
	pool  *pgxpool.Pool
	queue chan record
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func Open(ctx context.Context, dsn string) (*Journal, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := pool.Exec(initCtx, schemaSQL); err != nil {
		pool.Close()
		return nil, err
	}
	j := &Journal{
		pool:  pool,
		queue: make(chan record, 1024),
		done:  make(chan struct{}),
	}
	go j.run()
	return j, nil
}

// Record enqueues a transaction for the writer. Implements the lifecycle
// service's recorder hook, so it is called under a game lock and must not
// block.
func (j *Journal) Record(gameID string, tx store.Transaction) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}
	metricJournalQueuedTotal.Add(1)
	rec := record{gameID: gameID, tx: tx}
	select {
	case j.queue <- rec:
		return
	default:
	}
	select {
	case <-j.queue:
		metricJournalDroppedTotal.Add(1)
	default:
	}
	select {
	case j.queue <- rec:
	default:
		metricJournalDroppedTotal.Add(1)
	}
}

func (j *Journal) run() {
	defer close(j.done)
	for rec := range j.queue {
		j.write(rec)
	}
}

func (j *Journal) write(rec record) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := j.pool.Exec(ctx, insertSQL,
		rec.tx.ID, rec.gameID, rec.tx.PlayerID, string(rec.tx.Type),
		rec.tx.Amount, rec.tx.Description, rec.tx.CreatedAt)
	if err != nil {
		metricJournalErrorTotal.Add(1)
		log.Error().Err(err).Str("tx_id", rec.tx.ID).Str("game_id", rec.gameID).
			Msg("journal insert failed")
		return
	}
	metricJournalWrittenTotal.Add(1)
}

// Recent returns the newest journaled transactions for a game.
func (j *Journal) Recent(ctx context.Context, gameID string, limit int) ([]store.Transaction, error) {
	rows, err := j.pool.Query(ctx, recentSQL, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Transaction
	for rows.Next() {
		var tx store.Transaction
		var typ string
		if err := rows.Scan(&tx.ID, &tx.PlayerID, &typ, &tx.Amount, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Type = store.TransactionType(typ)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (j *Journal) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return j.pool.Ping(ctx)
}

// Close stops accepting records, waits briefly for the queue to drain, and
// releases the pool.
func (j *Journal) Close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	j.mu.Unlock()

	close(j.queue)
	select {
	case <-j.done:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("transaction journal drain timed out")
	}
	j.pool.Close()
}
