// Command demo-player walks a complete game against a running server:
// create, join, start, check in at every checkpoint, one early cash-out,
// end, then checks that the ledger balances.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type client struct {
	base string
	http *http.Client
}

func (c *client) post(path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, path, out)
}

func (c *client) get(path string, out any) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, path, out)
}

func (c *client) getAdmin(path, key string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Admin-Key", key)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, path, out)
}

func decode(resp *http.Response, path string, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func main() {
	base := getenv("SERVER_URL", "http://localhost:8080")
	master := getenv("GAME_MASTER_ID", "gm-demo")
	c := &client{base: base, http: &http.Client{Timeout: 10 * time.Second}}

	now := time.Now()
	var created struct {
		Game struct {
			ID string `json:"id"`
		} `json:"game"`
	}
	err := c.post("/api/games", map[string]any{
		"game_master_id":      master,
		"title":               "demo: three push-up sets",
		"objective":           "do three sets of push-ups today",
		"action":              "send a short clip of each set",
		"reward":              "split of the bonus pool",
		"failure":             "forfeit feeds the finishers",
		"stake_unit":          100,
		"max_multiplier":      5,
		"min_players":         2,
		"max_players":         8,
		"start_date":          now.Format(time.RFC3339),
		"end_date":            now.Add(2 * time.Hour).Format(time.RFC3339),
		"verification_method": "MANUAL",
		"checkpoints": []map[string]any{
			{"description": "set one", "expires_at": now.Add(30 * time.Minute).Format(time.RFC3339)},
			{"description": "set two", "expires_at": now.Add(60 * time.Minute).Format(time.RFC3339)},
			{"description": "set three", "expires_at": now.Add(90 * time.Minute).Format(time.RFC3339)},
		},
	}, &created)
	if err != nil {
		log.Fatal(err)
	}
	gameID := created.Game.ID
	log.Printf("created game %s", gameID)

	join := func(playerID string, multiplier int) {
		var resp struct {
			Player struct {
				Stake int64 `json:"stake"`
			} `json:"player"`
		}
		if err := c.post("/api/games/"+gameID+"/join", map[string]any{
			"player_id": playerID, "multiplier": multiplier,
		}, &resp); err != nil {
			log.Fatal(err)
		}
		log.Printf("%s joined with stake %d", playerID, resp.Player.Stake)
	}
	join("ann", 3)
	join("ben", 1)

	if err := c.post("/api/games/"+gameID+"/start", map[string]any{"game_master_id": master}, nil); err != nil {
		log.Fatal(err)
	}
	log.Printf("game started")

	checkIn := func(playerID string, checkpoint int) {
		var submitted struct {
			CheckIn struct {
				ID string `json:"id"`
			} `json:"check_in"`
		}
		if err := c.post("/api/games/"+gameID+"/checkins", map[string]any{
			"player_id": playerID, "checkpoint_number": checkpoint, "proof": "clip of " + playerID,
		}, &submitted); err != nil {
			log.Fatal(err)
		}
		if err := c.post("/api/games/"+gameID+"/checkins/"+submitted.CheckIn.ID+"/verify", map[string]any{
			"game_master_id": master, "approve": true,
		}, nil); err != nil {
			log.Fatal(err)
		}
		log.Printf("%s checked in at %d, approved", playerID, checkpoint)
	}

	checkIn("ann", 1)
	checkIn("ben", 1)
	checkIn("ann", 2)
	checkIn("ann", 3)

	var cashedOut struct {
		Cashout int64 `json:"cashout"`
		Forfeit int64 `json:"forfeit"`
	}
	if err := c.post("/api/games/"+gameID+"/cashout", map[string]any{"player_id": "ben"}, &cashedOut); err != nil {
		log.Fatal(err)
	}
	log.Printf("ben cashed out %d, forfeited %d", cashedOut.Cashout, cashedOut.Forfeit)

	var ended struct {
		Players []struct {
			ID       string `json:"id"`
			BonusWon *int64 `json:"bonus_won"`
		} `json:"players"`
	}
	if err := c.post("/api/games/"+gameID+"/end", map[string]any{"game_master_id": master}, &ended); err != nil {
		log.Fatal(err)
	}
	for _, p := range ended.Players {
		if p.BonusWon != nil {
			log.Printf("%s finished everything and won bonus %d", p.ID, *p.BonusWon)
		}
	}

	var txs struct {
		Items []struct {
			Type   string `json:"type"`
			Amount int64  `json:"amount"`
		} `json:"items"`
	}
	if err := c.get("/api/public/games/"+gameID+"/transactions?limit=100", &txs); err != nil {
		log.Fatal(err)
	}
	var staked, returned int64
	for _, tx := range txs.Items {
		switch tx.Type {
		case "INITIAL_STAKE":
			staked += tx.Amount
		case "CASHOUT", "PAYOUT", "REFUND":
			returned += tx.Amount
		}
	}

	var final struct {
		Game struct {
			State     string `json:"state"`
			TotalPool int64  `json:"total_pool"`
		} `json:"game"`
	}
	if err := c.get("/api/public/games/"+gameID, &final); err != nil {
		log.Fatal(err)
	}
	if staked != returned+final.Game.TotalPool {
		log.Fatalf("books do not balance: staked %d, returned %d, pool %d",
			staked, returned, final.Game.TotalPool)
	}
	log.Printf("game %s: staked %d = returned %d + pool %d, books balance",
		final.Game.State, staked, returned, final.Game.TotalPool)

	if key := os.Getenv("ADMIN_KEY"); key != "" {
		var ledger struct {
			Total int `json:"total"`
		}
		if err := c.getAdmin("/api/ledger?game_id="+gameID, key, &ledger); err != nil {
			log.Fatal(err)
		}
		log.Printf("admin ledger holds %d entries for this game", ledger.Total)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
