package rewards

import "time"

// rewardTable is indexed by streak level - 1. Levels past the end pay the last entry.
var rewardTable = [...]int64{5, 8, 12, 15, 20, 25, 30}

// MaxLevel is the streak level at which the reward stops growing.
const MaxLevel = len(rewardTable)

// RewardFor returns the reward for a streak level. Levels below 1 pay level 1.
func RewardFor(level int) int64 {
	switch {
	case level < 1:
		return rewardTable[0]
	case level > MaxLevel:
		return rewardTable[MaxLevel-1]
	default:
		return rewardTable[level-1]
	}
}

// utcDate truncates t to midnight of its UTC calendar day.
func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayDiff counts whole UTC calendar days from last to today.
func dayDiff(today, last time.Time) int {
	return int(utcDate(today).Sub(utcDate(last)).Hours() / 24)
}

// next decides whether a claim is allowed today and the streak it would set.
// A last claim dated in the future counts as claimed today.
func next(last *time.Time, streak int, today time.Time) (canClaim bool, level int) {
	if last == nil {
		return true, 1
	}

	switch diff := dayDiff(today, *last); {
	case diff <= 0:
		return false, streak
	case diff == 1:
		return true, streak + 1
	default:
		return true, 1
	}
}
