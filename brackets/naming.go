package brackets

import "fmt"

// eliminationRoundName names round r (1-based) of a numRounds-deep tree.
func eliminationRoundName(r, numRounds, bracketSize int) string {
	switch {
	case r == numRounds:
		return "Final"
	case r == numRounds-1:
		return "Semi-Finals"
	case r == 1:
		return fmt.Sprintf("Round of %d", bracketSize)
	case r == numRounds-2:
		return "Quarter-Finals"
	default:
		return fmt.Sprintf("Round %d", r)
	}
}

func losersRoundName(r, numRounds int) string {
	if r == numRounds {
		return "Losers Final"
	}
	return fmt.Sprintf("Losers Round %d", r)
}

const (
	grandFinalsName      = "Grand Finals"
	grandFinalsResetName = "Grand Finals Reset"
)
