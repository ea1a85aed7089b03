package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/utils"
)

// RegisterPlayerInput carries the identity supplied by the identity service and
// the payment flag supplied by billing.
type RegisterPlayerInput struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	Rating        int    `json:"rating"`
	FeePaid       bool   `json:"fee_paid"`
	AccessCode    string `json:"access_code,omitempty"`
}

// RegistrationResult is returned for both accepted and waitlisted players;
// being waitlisted is not an error.
type RegistrationResult struct {
	Accepted         bool                `json:"accepted"`
	WaitlistPosition int                 `json:"waitlist_position,omitempty"`
	Participant      *models.Participant `json:"participant"`
}

type UnregisterResult struct {
	Refund   *models.Refund      `json:"refund,omitempty"`
	Promoted *models.Participant `json:"promoted,omitempty"`
}

func (r *Registry) RegisterPlayer(ctx context.Context, tournamentID string, in RegisterPlayerInput) (*RegistrationResult, error) {
	in.ParticipantID = strings.TrimSpace(in.ParticipantID)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.ParticipantID == "" {
		return nil, fmt.Errorf("%w: participant id is required", ErrValidationFailed)
	}
	if in.DisplayName == "" {
		in.DisplayName = in.ParticipantID
	}

	// Хэш кода задается при создании и не меняется, поэтому bcrypt проверяется вне блокировки.
	snap, err := r.snapshot(tournamentID)
	if err != nil {
		return nil, err
	}
	codeOK := !snap.IsPrivate() || (in.AccessCode != "" && utils.CheckAccessCode(in.AccessCode, snap.AccessCodeHash))

	var result RegistrationResult
	_, err = r.mutate(ctx, tournamentID, "register_player", func(tx *txn) error {
		t := tx.t
		if t.Status != models.StatusRegistration {
			return fmt.Errorf("%w: registration is not open (status %s)", ErrInvalidState, t.Status)
		}
		if _, ok := t.Participant(in.ParticipantID); ok || t.WaitlistPosition(in.ParticipantID) > 0 {
			return fmt.Errorf("%w: %s in tournament %s", ErrAlreadyRegistered, in.ParticipantID, t.ID)
		}
		if !codeOK {
			return fmt.Errorf("%w: wrong access code for private tournament %s", ErrUnauthorized, t.ID)
		}
		if t.EntryFee.Amount > 0 && !in.FeePaid {
			return fmt.Errorf("%w: %d %s", ErrPaymentRequired, t.EntryFee.Amount, t.EntryFee.Currency)
		}

		t.RegistrationSeq++
		p := &models.Participant{
			ID:                in.ParticipantID,
			DisplayName:       in.DisplayName,
			AvatarURL:         in.AvatarURL,
			Rating:            in.Rating,
			RegistrationOrder: t.RegistrationSeq,
			RegisteredAt:      tx.now,
			FeePaid:           in.FeePaid && t.EntryFee.Amount > 0,
		}

		if len(t.Participants) < t.MaxPlayers {
			t.Participants = append(t.Participants, p)
			result = RegistrationResult{Accepted: true}
		} else {
			t.Waitlist = append(t.Waitlist, &models.WaitlistEntry{Participant: p, QueuedAt: tx.now})
			result = RegistrationResult{WaitlistPosition: len(t.Waitlist)}
		}
		result.Participant = p.Clone()

		tx.emit(events.PlayerRegistered, events.PlayerRegisteredPayload{
			Participant:      p.Clone(),
			Accepted:         result.Accepted,
			WaitlistPosition: result.WaitlistPosition,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UnregisterPlayer removes a participant or a waitlist entry during registration.
// A freed confirmed slot goes to the head of the waitlist.
func (r *Registry) UnregisterPlayer(ctx context.Context, tournamentID, participantID string) (*UnregisterResult, error) {
	var result UnregisterResult
	_, err := r.mutate(ctx, tournamentID, "unregister_player", func(tx *txn) error {
		t := tx.t
		if t.Status != models.StatusRegistration {
			return fmt.Errorf("%w: players can only leave during registration (status %s)", ErrInvalidState, t.Status)
		}

		if pos := t.WaitlistPosition(participantID); pos > 0 {
			entry := t.Waitlist[pos-1]
			t.Waitlist = append(t.Waitlist[:pos-1], t.Waitlist[pos:]...)
			if refund, ok := tx.refund(entry.Participant, "unregistered"); ok {
				result.Refund = &refund
			}
			return nil
		}

		idx := -1
		for i, p := range t.Participants {
			if p.ID == participantID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s in tournament %s", ErrParticipantNotFound, participantID, t.ID)
		}

		leaving := t.Participants[idx]
		if refund, ok := tx.refund(leaving, "unregistered"); ok {
			result.Refund = &refund
		}

		if len(t.Waitlist) == 0 {
			t.Participants = append(t.Participants[:idx], t.Participants[idx+1:]...)
			return nil
		}

		head := t.Waitlist[0]
		t.Waitlist = t.Waitlist[1:]
		t.Participants[idx] = head.Participant
		result.Promoted = head.Participant.Clone()
		tx.emit(events.PlayerPromoted, events.PlayerPromotedPayload{
			Participant: head.Participant.Clone(),
			ReplacedID:  leaving.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Promoted != nil {
		r.logger.InfoContext(ctx, "waitlisted player promoted",
			slog.String("tournament_id", tournamentID),
			slog.String("participant_id", result.Promoted.ID),
			slog.String("replaced_id", participantID))
	}
	return &result, nil
}

// CheckIn confirms a registered participant will play. Checking in twice is a no-op.
func (r *Registry) CheckIn(ctx context.Context, tournamentID, participantID string) (*models.Participant, error) {
	t, err := r.mutate(ctx, tournamentID, "check_in", func(tx *txn) error {
		if tx.t.Status != models.StatusRegistration && tx.t.Status != models.StatusReady {
			return fmt.Errorf("%w: check-in is closed (status %s)", ErrInvalidState, tx.t.Status)
		}
		p, err := findParticipant(tx.t, participantID)
		if err != nil {
			return err
		}
		if p.CheckedIn {
			return errNoChange
		}
		p.CheckedIn = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	p, _ := t.Participant(participantID)
	return p.Clone(), nil
}
