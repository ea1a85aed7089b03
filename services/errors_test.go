package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundKindsWrapErrNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"tournament", fmt.Errorf("%w: t-1", ErrTournamentNotFound), true},
		{"match", fmt.Errorf("%w: 7", ErrMatchNotFound), true},
		{"participant", ErrParticipantNotFound, true},
		{"invalid state", ErrInvalidState, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
			if tt.want {
				assert.ErrorIs(t, tt.err, ErrNotFound)
			}
		})
	}
	assert.Equal(t, "match not found", ErrMatchNotFound.Error())
}

func TestLookupsReturnNotFound(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()
	tour := createTournament(t, r, &models.SingleEliminationSettings{}, nil)
	startWithPlayers(t, r, tour.ID, 4)

	_, err := r.StartMatch(ctx, tour.ID, 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.GetTournament(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
