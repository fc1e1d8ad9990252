package lifecycle

import (
	"sync"
	"time"

	"stake-gauntlet/internal/store"
	"stake-gauntlet/internal/verify"
)

// Service is the sole writer of game business rules. Every command locks
// the target game for its whole duration, so commands on one game are
// serialized while distinct games proceed independently; the scheduler goes
// through the same methods and the same locks.
type Service struct {
	store      *store.Store
	wf         *verify.Workflow
	feed       *Feed
	startGrace time.Duration
	now        func() time.Time

	observers []Observer
	journal   TxRecorder

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(st *store.Store, wf *verify.Workflow, feed *Feed, startGrace time.Duration, now func() time.Time) *Service {
	if startGrace <= 0 {
		startGrace = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:      st,
		wf:         wf,
		feed:       feed,
		startGrace: startGrace,
		now:        now,
		locks:      make(map[string]*sync.Mutex),
	}
}

// RegisterObserver adds a synchronous event receiver. Call during wiring,
// before the service starts taking commands.
func (s *Service) RegisterObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// SetJournal attaches the write-behind transaction sink. Call during wiring.
func (s *Service) SetJournal(j TxRecorder) {
	s.journal = j
}

// lockGame acquires the per-game command lock, creating it on first use.
func (s *Service) lockGame(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// game loads a copy or maps absence to the domain error.
func (s *Service) game(id string) (*store.Game, error) {
	g, ok := s.store.GetGame(id)
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// emit publishes to the feed and forwards to observers. Called while the
// game lock is held so event order matches mutation order.
func (s *Service) emit(kind EventKind, gameID, playerID string, data map[string]any) {
	ev := GameEvent{Kind: kind, GameID: gameID, PlayerID: playerID, At: s.now(), Data: data}
	if s.feed != nil {
		ev = s.feed.Publish(ev)
	}
	for _, o := range s.observers {
		o.OnGameEvent(ev)
	}
}

// appendTx writes a ledger transaction to the store and the journal.
func (s *Service) appendTx(gameID string, tx store.Transaction) store.Transaction {
	s.store.AppendTransaction(gameID, tx)
	if s.journal != nil {
		s.journal.Record(gameID, tx)
	}
	return tx
}

func (s *Service) newTx(playerID string, typ store.TransactionType, amount int64, desc string) store.Transaction {
	return store.Transaction{
		ID:          store.NewID(),
		PlayerID:    playerID,
		Type:        typ,
		Amount:      amount,
		Description: desc,
		CreatedAt:   s.now(),
	}
}

// GetGame returns a deep copy of the full aggregate. Callers may mutate it
// freely without touching stored state.
func (s *Service) GetGame(id string) (*store.Game, error) {
	return s.game(id)
}

// ListGames returns copies filtered by state plus the total match count.
func (s *Service) ListGames(state store.GameState, limit, offset int) ([]*store.Game, int) {
	return s.store.ListGames(state, limit, offset)
}

// GetPlayerCheckIns returns the player's check-ins in submission order.
func (s *Service) GetPlayerCheckIns(gameID, playerID string) ([]store.CheckIn, error) {
	g, err := s.game(gameID)
	if err != nil {
		return nil, err
	}
	if g.FindPlayer(playerID) == nil {
		return nil, ErrPlayerNotFound
	}
	return g.PlayerCheckIns(playerID), nil
}

// GetTransactions returns a page of the game's ledger plus the total count.
func (s *Service) GetTransactions(gameID string, limit, offset int) ([]store.Transaction, int, error) {
	g, err := s.game(gameID)
	if err != nil {
		return nil, 0, err
	}
	total := len(g.Transactions)
	if offset >= total {
		return []store.Transaction{}, total, nil
	}
	txs := g.Transactions[offset:]
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, total, nil
}

// LedgerEntry is one game's transaction tagged with its game for the
// cross-game admin ledger.
type LedgerEntry struct {
	GameID      string            `json:"game_id"`
	Transaction store.Transaction `json:"transaction"`
}

// Ledger returns transactions across all games, creation order within and
// across games, optionally filtered to one game.
func (s *Service) Ledger(gameID string, limit, offset int) ([]LedgerEntry, int) {
	games, _ := s.store.ListGames("", 0, 0)
	entries := make([]LedgerEntry, 0, 64)
	for _, g := range games {
		if gameID != "" && g.ID != gameID {
			continue
		}
		for _, tx := range g.Transactions {
			entries = append(entries, LedgerEntry{GameID: g.ID, Transaction: tx})
		}
	}
	total := len(entries)
	if offset >= total {
		return []LedgerEntry{}, total
	}
	entries = entries[offset:]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, total
}
