package store

import "time"

type GameState string

const (
	GameWaitingForPlayers GameState = "WAITING_FOR_PLAYERS"
	GameInProgress        GameState = "IN_PROGRESS"
	GameEnded             GameState = "ENDED"
	GameAborted           GameState = "ABORTED"
)

// Terminal reports whether no further state transition is possible.
func (s GameState) Terminal() bool {
	return s == GameEnded || s == GameAborted
}

type VerificationMethod string

const (
	VerifyManual VerificationMethod = "MANUAL"
	VerifyAI     VerificationMethod = "AI"
)

type CheckInStatus string

const (
	CheckInPending  CheckInStatus = "PENDING"
	CheckInApproved CheckInStatus = "APPROVED"
	CheckInRejected CheckInStatus = "REJECTED"
)

type VerifierKind string

const (
	VerifiedByGameMaster VerifierKind = "GAMEMASTER"
	VerifiedByAI         VerifierKind = "AI"
	VerifiedByTimeout    VerifierKind = "TIMEOUT_APPROVAL"
)

type TransactionType string

const (
	TxInitialStake     TransactionType = "INITIAL_STAKE"
	TxCashout          TransactionType = "CASHOUT"
	TxPayout           TransactionType = "PAYOUT"
	TxRefund           TransactionType = "REFUND"
	TxBonusPoolCleared TransactionType = "BONUS_POOL_CLEARED"
)

// Checkpoint is one ordered milestone of a game. Number is 1-based and
// expiries never decrease across the sequence.
type Checkpoint struct {
	Number         int       `json:"number"`
	Description    string    `json:"description"`
	ExpiresAt      time.Time `json:"expires_at"`
	SampleApproved []string  `json:"sample_approved,omitempty"`
	SampleRejected []string  `json:"sample_rejected,omitempty"`
}

// AIVerification holds the game-master-authored judging config for games
// using the AI verification method.
type AIVerification struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Multiplier  int       `json:"multiplier"`
	Stake       int64     `json:"stake"`
	JoinedAt    time.Time `json:"joined_at"`

	CheckpointsCompleted int    `json:"checkpoints_completed"`
	FoldedAtCheckpoint   *int   `json:"folded_at_checkpoint,omitempty"`
	CashoutAmount        int64  `json:"cashout_amount"`
	BonusWon             *int64 `json:"bonus_won,omitempty"`
}

// Folded reports whether the player has irrevocably exited the game.
func (p *Player) Folded() bool {
	return p.FoldedAtCheckpoint != nil
}

type CheckIn struct {
	ID               string        `json:"id"`
	PlayerID         string        `json:"player_id"`
	CheckpointNumber int           `json:"checkpoint_number"`
	Proof            string        `json:"proof"`
	SubmittedAt      time.Time     `json:"submitted_at"`
	Status           CheckInStatus `json:"status"`
	VerifiedAt       *time.Time    `json:"verified_at,omitempty"`
	VerifiedBy       VerifierKind  `json:"verified_by,omitempty"`
	Confidence       float64       `json:"confidence,omitempty"`
	Notes            string        `json:"notes,omitempty"`
}

// Transaction is an append-only ledger record. PlayerID is empty for
// system entries such as bonus pool clearing.
type Transaction struct {
	ID          string          `json:"id"`
	PlayerID    string          `json:"player_id,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Game is the aggregate root. Players, CheckIns and Transactions are owned
// by composition and never outlive the game.
type Game struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	GameMasterID string `json:"game_master_id"`

	Objective string `json:"objective"`
	Action    string `json:"action"`
	Reward    string `json:"reward"`
	Failure   string `json:"failure"`

	StakeUnit     int64 `json:"stake_unit"`
	MaxMultiplier int   `json:"max_multiplier"`
	MinPlayers    int   `json:"min_players"`
	MaxPlayers    int   `json:"max_players"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	VerificationMethod VerificationMethod `json:"verification_method"`
	AIVerification     *AIVerification    `json:"ai_verification,omitempty"`
	ForceCashoutOnMiss bool               `json:"force_cashout_on_miss"`

	Checkpoints []Checkpoint `json:"checkpoints"`

	State        GameState     `json:"state"`
	Players      []Player      `json:"players"`
	CheckIns     []CheckIn     `json:"check_ins"`
	Transactions []Transaction `json:"transactions"`

	TotalPool     int64 `json:"total_pool"`
	TotalCashouts int64 `json:"total_cashouts"`
	BonusPool     int64 `json:"bonus_pool"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	AbortReason string     `json:"abort_reason,omitempty"`
}

func (g *Game) TotalCheckpoints() int {
	return len(g.Checkpoints)
}

// FindPlayer returns a pointer into the game's player slice, or nil.
func (g *Game) FindPlayer(playerID string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return &g.Players[i]
		}
	}
	return nil
}

// FindCheckIn returns a pointer into the game's check-in slice, or nil.
func (g *Game) FindCheckIn(checkInID string) *CheckIn {
	for i := range g.CheckIns {
		if g.CheckIns[i].ID == checkInID {
			return &g.CheckIns[i]
		}
	}
	return nil
}

// LatestCheckIn returns the most recently submitted check-in for the
// player/checkpoint pair, or nil when none exists. Submission order is
// append order.
func (g *Game) LatestCheckIn(playerID string, checkpoint int) *CheckIn {
	for i := len(g.CheckIns) - 1; i >= 0; i-- {
		c := &g.CheckIns[i]
		if c.PlayerID == playerID && c.CheckpointNumber == checkpoint {
			return c
		}
	}
	return nil
}

// PlayerCheckIns returns the player's check-ins in submission order.
func (g *Game) PlayerCheckIns(playerID string) []CheckIn {
	var out []CheckIn
	for _, c := range g.CheckIns {
		if c.PlayerID == playerID {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy sharing no mutable memory with the receiver.
func (g *Game) Clone() *Game {
	out := *g

	out.Checkpoints = make([]Checkpoint, len(g.Checkpoints))
	for i, cp := range g.Checkpoints {
		out.Checkpoints[i] = cp
		out.Checkpoints[i].SampleApproved = append([]string(nil), cp.SampleApproved...)
		out.Checkpoints[i].SampleRejected = append([]string(nil), cp.SampleRejected...)
	}

	out.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		out.Players[i] = p
		if p.FoldedAtCheckpoint != nil {
			v := *p.FoldedAtCheckpoint
			out.Players[i].FoldedAtCheckpoint = &v
		}
		if p.BonusWon != nil {
			v := *p.BonusWon
			out.Players[i].BonusWon = &v
		}
	}

	out.CheckIns = make([]CheckIn, len(g.CheckIns))
	for i, c := range g.CheckIns {
		out.CheckIns[i] = c
		if c.VerifiedAt != nil {
			v := *c.VerifiedAt
			out.CheckIns[i].VerifiedAt = &v
		}
	}

	out.Transactions = append([]Transaction(nil), g.Transactions...)

	if g.AIVerification != nil {
		v := *g.AIVerification
		out.AIVerification = &v
	}
	if g.StartedAt != nil {
		v := *g.StartedAt
		out.StartedAt = &v
	}
	if g.EndedAt != nil {
		v := *g.EndedAt
		out.EndedAt = &v
	}
	return &out
}
