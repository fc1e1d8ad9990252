// Package settle holds the pure settlement arithmetic. Everything is integer
// minor-currency-unit math with floor division; fractional units are never
// produced and rounding always favors the pool.
package settle

// Stake is the amount a player commits when joining.
func Stake(stakeUnit int64, multiplier int) int64 {
	return stakeUnit * int64(multiplier)
}

// CashoutAmount is the partial refund for a player exiting after completing
// `completed` of `total` checkpoints.
func CashoutAmount(stake int64, completed, total int) int64 {
	if total <= 0 {
		panic("settle: game without checkpoints")
	}
	if completed < 0 || completed > total {
		panic("settle: completed count out of range")
	}
	return stake * int64(completed) / int64(total)
}

// Forfeit is the part of the stake a cashing-out player leaves behind for
// the bonus pool.
func Forfeit(stake, cashout int64) int64 {
	return stake - cashout
}

// BonusShare is one winner's slice of the bonus pool, weighted by stake.
// Because of the floor, the shares may sum to less than the pool; the
// remainder is retained, not distributed.
func BonusShare(winnerStake, bonusPool, winnerStakeSum int64) int64 {
	if winnerStakeSum <= 0 {
		panic("settle: bonus share with no winner stakes")
	}
	return winnerStake * bonusPool / winnerStakeSum
}

// BonusShares maps each winner stake to its share, in input order.
func BonusShares(winnerStakes []int64, bonusPool int64) []int64 {
	var sum int64
	for _, s := range winnerStakes {
		sum += s
	}
	shares := make([]int64, len(winnerStakes))
	if sum == 0 {
		return shares
	}
	for i, s := range winnerStakes {
		shares[i] = BonusShare(s, bonusPool, sum)
	}
	return shares
}
