package rooms

const (
	scoreBase     = 10
	scoreMaxBonus = 5
)

// Score awards points for one answer. Incorrect or missing answers score
// zero. Correct answers earn a fixed base plus a bonus proportional to the
// fraction of the time limit still remaining at submission, so speed is
// rewarded without outweighing correctness.
func Score(correct bool, remainingSec, limitSec int) int {
	if !correct {
		return 0
	}
	if limitSec <= 0 {
		return scoreBase
	}
	if remainingSec < 0 {
		remainingSec = 0
	}
	if remainingSec > limitSec {
		remainingSec = limitSec
	}
	bonus := remainingSec * scoreMaxBonus / limitSec
	return scoreBase + bonus
}
