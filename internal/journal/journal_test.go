package journal

import (
	"context"
	"testing"
	"time"

	"stake-gauntlet/internal/store"
	"stake-gauntlet/internal/testutil"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), testutil.JournalDSN(t))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(j.Close)
	return j
}

func TestRecordWritesThrough(t *testing.T) {
	j := openJournal(t)
	gameID := store.NewID()
	tx := store.Transaction{
		ID:        store.NewID(),
		PlayerID:  "ann",
		Type:      store.TxInitialStake,
		Amount:    2000,
		CreatedAt: time.Now().UTC(),
	}
	j.Record(gameID, tx)
	j.Record(gameID, tx) // same id again, must stay one row

	deadline := time.Now().Add(3 * time.Second)
	for {
		got, err := j.Recent(context.Background(), gameID, 10)
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(got) > 1 {
			t.Fatalf("duplicate insert not ignored: %d rows", len(got))
		}
		if len(got) == 1 {
			if got[0].ID != tx.ID || got[0].Amount != 2000 || got[0].Type != store.TxInitialStake {
				t.Fatalf("journaled row mismatch: %+v", got[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("journaled row never appeared")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestPing(t *testing.T) {
	j := openJournal(t)
	if err := j.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestRecordAfterCloseIsIgnored(t *testing.T) {
	j := openJournal(t)
	j.Close()
	j.Record(store.NewID(), store.Transaction{ID: store.NewID(), Type: store.TxRefund, CreatedAt: time.Now()})
}
