package settle

import "testing"

func TestCashoutAfterThreeOfFive(t *testing.T) {
	stake := Stake(1000, 2)
	if stake != 2000 {
		t.Fatalf("stake %d, want 2000", stake)
	}
	cashout := CashoutAmount(stake, 3, 5)
	if cashout != 1200 {
		t.Fatalf("cashout %d, want 1200", cashout)
	}
	if f := Forfeit(stake, cashout); f != 800 {
		t.Fatalf("forfeit %d, want 800", f)
	}
}

func TestCashoutBounds(t *testing.T) {
	if got := CashoutAmount(2000, 0, 5); got != 0 {
		t.Fatalf("zero progress should cash out 0, got %d", got)
	}
	if got := CashoutAmount(2000, 5, 5); got != 2000 {
		t.Fatalf("full progress should cash out full stake, got %d", got)
	}
}

func TestCashoutFloorsFractions(t *testing.T) {
	// 1000 * 1 / 3 = 333.33.. -> 333
	if got := CashoutAmount(1000, 1, 3); got != 333 {
		t.Fatalf("cashout %d, want 333", got)
	}
	forfeit := Forfeit(1000, 333)
	if forfeit != 667 {
		t.Fatalf("forfeit %d, want 667", forfeit)
	}
}

func TestBonusSharesEqualWinners(t *testing.T) {
	shares := BonusShares([]int64{2000, 2000}, 801)
	if shares[0] != 400 || shares[1] != 400 {
		t.Fatalf("shares %v, want [400 400]", shares)
	}
	var sum int64
	for _, s := range shares {
		sum += s
	}
	if sum != 800 {
		t.Fatalf("distributed %d, want 800 with 1 retained", sum)
	}
}

func TestBonusSharesNeverOverdistribute(t *testing.T) {
	cases := [][]int64{
		{1000},
		{1000, 3000},
		{700, 700, 700},
		{1, 2, 3, 4, 5},
	}
	pools := []int64{0, 1, 799, 801, 12345}
	for _, stakes := range cases {
		for _, pool := range pools {
			var sum int64
			for _, s := range BonusShares(stakes, pool) {
				if s < 0 {
					t.Fatalf("negative share for stakes=%v pool=%d", stakes, pool)
				}
				sum += s
			}
			if sum > pool {
				t.Fatalf("overdistributed %d of %d for stakes=%v", sum, pool, stakes)
			}
		}
	}
}

func TestBonusShareWeightedByStake(t *testing.T) {
	shares := BonusShares([]int64{1000, 3000}, 1000)
	if shares[0] != 250 || shares[1] != 750 {
		t.Fatalf("shares %v, want [250 750]", shares)
	}
}

func TestCashoutPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for completed > total")
		}
	}()
	CashoutAmount(1000, 6, 5)
}
