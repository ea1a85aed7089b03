package services

import (
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusDraft:        {models.StatusRegistration, models.StatusCancelled},
		models.StatusRegistration: {models.StatusReady, models.StatusInProgress, models.StatusCancelled},
		models.StatusReady:        {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress:   {models.StatusCompleted, models.StatusCancelled},
		models.StatusCompleted:    {},
		models.StatusCancelled:    {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

func transition(t *models.Tournament, next models.TournamentStatus) error {
	if !isValidStatusTransition(t.Status, next) {
		return fmt.Errorf("%w: tournament %s cannot move from %s to %s", ErrInvalidState, t.ID, t.Status, next)
	}
	t.Status = next
	return nil
}

func findMatch(t *models.Tournament, matchID int) (*models.Match, error) {
	m, ok := t.MatchByID(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: match %d in tournament %s", ErrMatchNotFound, matchID, t.ID)
	}
	return m, nil
}

func findParticipant(t *models.Tournament, participantID string) (*models.Participant, error) {
	p, ok := t.Participant(participantID)
	if !ok {
		return nil, fmt.Errorf("%w: %s in tournament %s", ErrParticipantNotFound, participantID, t.ID)
	}
	return p, nil
}

func intPtr(v int) *int {
	return &v
}
