package utils

import "math"

// EloKFactor is the maximum rating swing of a single match.
const EloKFactor = 32.0

// CalculateEloChange calculates rating changes using the standard Elo formula.
// Returns (winnerChange, loserChange).
func CalculateEloChange(winnerElo, loserElo float64) (float64, float64) {
	expectedWinner := 1.0 / (1.0 + math.Pow(10, (loserElo-winnerElo)/400))
	expectedLoser := 1.0 - expectedWinner

	winnerChange := EloKFactor * (1.0 - expectedWinner)
	loserChange := EloKFactor * (0.0 - expectedLoser)

	return math.Round(winnerChange), math.Round(loserChange)
}

// CalculateDrawEloChange returns the changes for a drawn match: (player1Change, player2Change).
func CalculateDrawEloChange(player1Elo, player2Elo float64) (float64, float64) {
	expected1 := 1.0 / (1.0 + math.Pow(10, (player2Elo-player1Elo)/400))
	expected2 := 1.0 - expected1

	return math.Round(EloKFactor * (0.5 - expected1)), math.Round(EloKFactor * (0.5 - expected2))
}
