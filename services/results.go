package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/utils"
)

// MatchResultInput is a declared result of a two-participant match. LoserID may
// be omitted; it is then the winner's opponent.
type MatchResultInput struct {
	WinnerID string                      `json:"winner_id"`
	LoserID  string                      `json:"loser_id"`
	Draw     bool                        `json:"draw"`
	Scores   map[string]int              `json:"scores"`
	Stats    map[string]models.StatDelta `json:"stats"`
}

type BattleRoyaleResultInput struct {
	// Placements lists every group member, winner first.
	Placements []string                    `json:"placements"`
	Stats      map[string]models.StatDelta `json:"stats"`
}

// StartMatch marks a ready match as being played.
func (r *Registry) StartMatch(ctx context.Context, tournamentID string, matchID int) (*models.Match, error) {
	t, err := r.mutate(ctx, tournamentID, "start_match", func(tx *txn) error {
		m, err := playableMatch(tx.t, matchID)
		if err != nil {
			return err
		}
		if m.Status != models.MatchReady {
			return fmt.Errorf("%w: match %d is %s", ErrInvalidState, m.ID, m.Status)
		}
		m.Status = models.MatchInProgress
		startedAt := tx.now
		m.StartedAt = &startedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	m, _ := t.MatchByID(matchID)
	return m.Clone(), nil
}

// ReportMatchResult records the result of a two-participant match and pushes
// its outcome through the bracket.
func (r *Registry) ReportMatchResult(ctx context.Context, tournamentID string, matchID int, in MatchResultInput) (*models.Match, error) {
	t, err := r.mutate(ctx, tournamentID, "report_match_result", func(tx *txn) error {
		t := tx.t
		m, err := playableMatch(t, matchID)
		if err != nil {
			return err
		}
		if t.Format == models.FormatBattleRoyale {
			return fmt.Errorf("%w: match %d is a battle royale group, report placements instead", ErrInvalidState, m.ID)
		}
		if m.Status != models.MatchReady && m.Status != models.MatchInProgress {
			return fmt.Errorf("%w: match %d is %s", ErrInvalidState, m.ID, m.Status)
		}
		if err := validateMatchInput(m, in.Scores, in.Stats); err != nil {
			return err
		}

		if in.Draw {
			if t.Format != models.FormatRoundRobin && t.Format != models.FormatSwiss {
				return fmt.Errorf("%w: %s matches cannot end in a draw", ErrInvalidState, t.Format)
			}
			return r.recordDraw(ctx, tx, m, in)
		}

		if !m.HasParticipant(in.WinnerID) {
			return fmt.Errorf("%w: %q is not playing match %d", ErrInvalidState, in.WinnerID, m.ID)
		}
		loserID := in.LoserID
		if loserID == "" {
			loserID = m.Opponent(in.WinnerID)
		}
		if loserID == in.WinnerID || !m.HasParticipant(loserID) {
			return fmt.Errorf("%w: %q is not the opponent in match %d", ErrInvalidState, loserID, m.ID)
		}

		m.Scores = copyScores(in.Scores)
		applyStatDeltas(t, in.Stats)
		return r.recordDecision(ctx, tx, m, in.WinnerID, loserID, models.MatchCompleted)
	})
	if err != nil {
		return nil, err
	}
	m, _ := t.MatchByID(matchID)
	return m.Clone(), nil
}

// ForfeitMatch awards the match to the opponent of participantID. A seated
// participant may forfeit a pending match; the opponent wins on arrival.
func (r *Registry) ForfeitMatch(ctx context.Context, tournamentID string, matchID int, participantID string) (*models.Match, error) {
	t, err := r.mutate(ctx, tournamentID, "forfeit_match", func(tx *txn) error {
		m, err := playableMatch(tx.t, matchID)
		if err != nil {
			return err
		}
		if tx.t.Format == models.FormatBattleRoyale {
			return fmt.Errorf("%w: battle royale groups cannot be forfeited", ErrInvalidState)
		}
		if !m.HasParticipant(participantID) {
			return fmt.Errorf("%w: %q is not playing match %d", ErrInvalidState, participantID, m.ID)
		}
		switch m.Status {
		case models.MatchReady, models.MatchInProgress:
			return r.recordDecision(ctx, tx, m, m.Opponent(participantID), participantID, models.MatchForfeit)
		case models.MatchPending:
			return r.recordEarlyForfeit(ctx, tx, m, participantID)
		default:
			return fmt.Errorf("%w: match %d is %s", ErrInvalidState, m.ID, m.Status)
		}
	})
	if err != nil {
		return nil, err
	}
	m, _ := t.MatchByID(matchID)
	return m.Clone(), nil
}

// ReportBattleRoyaleResult records the finishing order of a group. Members
// finishing below the qualify count are eliminated.
func (r *Registry) ReportBattleRoyaleResult(ctx context.Context, tournamentID string, matchID int, in BattleRoyaleResultInput) (*models.Match, error) {
	t, err := r.mutate(ctx, tournamentID, "report_battle_royale_result", func(tx *txn) error {
		t := tx.t
		m, err := playableMatch(t, matchID)
		if err != nil {
			return err
		}
		if t.Format != models.FormatBattleRoyale {
			return fmt.Errorf("%w: match %d is not a battle royale group", ErrInvalidState, m.ID)
		}
		if m.Status != models.MatchReady && m.Status != models.MatchInProgress {
			return fmt.Errorf("%w: match %d is %s", ErrInvalidState, m.ID, m.Status)
		}
		if err := validateMatchInput(m, nil, in.Stats); err != nil {
			return err
		}

		seen := make(map[string]bool, len(in.Placements))
		for _, id := range in.Placements {
			if !m.HasParticipant(id) {
				return fmt.Errorf("%w: %q is not in group %d", ErrInvalidState, id, m.ID)
			}
			if seen[id] {
				return fmt.Errorf("%w: %q is placed twice", ErrValidationFailed, id)
			}
			seen[id] = true
		}
		if len(seen) != len(m.ParticipantIDs()) {
			return fmt.Errorf("%w: placements must rank all %d group members", ErrValidationFailed, len(m.ParticipantIDs()))
		}

		applyStatDeltas(t, in.Stats)
		m.Placements = append([]string(nil), in.Placements...)
		m.WinnerID = in.Placements[0]
		m.Status = models.MatchCompleted
		completedAt := tx.now
		m.CompletedAt = &completedAt

		for i, id := range m.Placements {
			p, err := findParticipant(t, id)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}
			if i < m.QualifyCount {
				p.Stats.Wins++
				continue
			}
			p.Stats.Losses++
			p.Eliminated = true
			p.EliminatedInRound = m.Round
		}

		tx.emit(events.MatchCompleted, events.MatchCompletedPayload{Match: m.Clone()})
		return r.advance(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	m, _ := t.MatchByID(matchID)
	return m.Clone(), nil
}

func playableMatch(t *models.Tournament, matchID int) (*models.Match, error) {
	if t.Status != models.StatusInProgress {
		return nil, fmt.Errorf("%w: tournament %s is %s", ErrInvalidState, t.ID, t.Status)
	}
	return findMatch(t, matchID)
}

func validateMatchInput(m *models.Match, scores map[string]int, stats map[string]models.StatDelta) error {
	for id := range scores {
		if !m.HasParticipant(id) {
			return fmt.Errorf("%w: score for %q who is not in match %d", ErrInvalidState, id, m.ID)
		}
	}
	for id, d := range stats {
		if !m.HasParticipant(id) {
			return fmt.Errorf("%w: stats for %q who is not in match %d", ErrInvalidState, id, m.ID)
		}
		if d.Tags < 0 || d.SurvivalSeconds < 0 {
			return fmt.Errorf("%w: stat deltas must not be negative", ErrValidationFailed)
		}
	}
	return nil
}

func applyStatDeltas(t *models.Tournament, stats map[string]models.StatDelta) {
	for id, d := range stats {
		if p, ok := t.Participant(id); ok {
			p.Stats.Tags += d.Tags
			p.Stats.SurvivalSeconds += d.SurvivalSeconds
		}
	}
}

func copyScores(scores map[string]int) map[string]int {
	if len(scores) == 0 {
		return nil
	}
	cp := make(map[string]int, len(scores))
	for k, v := range scores {
		cp[k] = v
	}
	return cp
}

// recordDecision finishes a match with a winner and a loser, then propagates.
func (r *Registry) recordDecision(ctx context.Context, tx *txn, m *models.Match, winnerID, loserID string, status models.MatchStatus) error {
	t := tx.t
	winner, err := findParticipant(t, winnerID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	loser, err := findParticipant(t, loserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	m.WinnerID = winner.ID
	m.LoserID = loser.ID
	m.Status = status
	completedAt := tx.now
	m.CompletedAt = &completedAt

	winner.Stats.Wins++
	loser.Stats.Losses++

	var ratingChange map[string]int
	if status == models.MatchCompleted {
		wd, ld := utils.CalculateEloChange(float64(winner.Rating), float64(loser.Rating))
		winner.Stats.RatingDelta += int(wd)
		loser.Stats.RatingDelta += int(ld)
		ratingChange = map[string]int{winner.ID: int(wd), loser.ID: int(ld)}
	}

	// Победа нижней сетки в гранд-финале требует переигровки.
	reset := false
	if t.Format == models.FormatDoubleElimination && brackets.IsGrandFinal(m) && status == models.MatchCompleted {
		settings, _ := t.Settings.(*models.DoubleEliminationSettings)
		reset = winner.ID == m.Slots[1].ParticipantID && (settings == nil || !settings.DisableBracketReset)
	}

	if t.Format.IsElimination() && m.LoserNextMatchID == nil && !reset {
		loser.Eliminated = true
		loser.EliminatedInRound = m.Round
	}

	tx.emit(events.MatchCompleted, events.MatchCompletedPayload{Match: m.Clone(), RatingChange: ratingChange})

	if reset {
		round, rm := brackets.NewBracketReset(m, len(t.Rounds)+1)
		t.AddMatch(rm)
		round.MatchIDs = []int{rm.ID}
		t.Rounds = append(t.Rounds, round)
		t.RequiresReset = true
		tx.emit(events.MatchReady, events.MatchReadyPayload{Match: rm.Clone()})
	}

	res, err := brackets.Propagate(t.Matches, m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	tx.applyResolution(res)
	return r.advance(ctx, tx)
}

// recordEarlyForfeit closes a pending match before the opponent is known. The
// winner and both outcomes are settled later by brackets.Propagate.
func (r *Registry) recordEarlyForfeit(ctx context.Context, tx *txn, m *models.Match, loserID string) error {
	t := tx.t
	loser, err := findParticipant(t, loserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	m.LoserID = loser.ID
	m.Status = models.MatchForfeit
	completedAt := tx.now
	m.CompletedAt = &completedAt
	loser.Stats.Losses++
	if t.Format.IsElimination() && m.LoserNextMatchID == nil {
		loser.Eliminated = true
		loser.EliminatedInRound = m.Round
	}
	return r.advance(ctx, tx)
}

func (r *Registry) recordDraw(ctx context.Context, tx *txn, m *models.Match, in MatchResultInput) error {
	ids := m.ParticipantIDs()
	if len(ids) != 2 {
		return fmt.Errorf("%w: match %d has no opponent", ErrInvalidState, m.ID)
	}
	a, err := findParticipant(tx.t, ids[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	b, err := findParticipant(tx.t, ids[1])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	m.Draw = true
	m.Scores = copyScores(in.Scores)
	m.Status = models.MatchCompleted
	completedAt := tx.now
	m.CompletedAt = &completedAt
	applyStatDeltas(tx.t, in.Stats)

	a.Stats.Draws++
	b.Stats.Draws++
	da, db := utils.CalculateDrawEloChange(float64(a.Rating), float64(b.Rating))
	a.Stats.RatingDelta += int(da)
	b.Stats.RatingDelta += int(db)

	tx.emit(events.MatchCompleted, events.MatchCompletedPayload{
		Match:        m.Clone(),
		RatingChange: map[string]int{a.ID: int(da), b.ID: int(db)},
	})
	return r.advance(ctx, tx)
}

func (tx *txn) applyResolution(res brackets.Resolution) {
	for _, m := range res.Byes {
		creditBye(tx.t, m)
	}
	for _, m := range res.Forfeits {
		if p, ok := tx.t.Participant(m.WinnerID); ok {
			p.Stats.Wins++
		}
		tx.emit(events.MatchCompleted, events.MatchCompletedPayload{Match: m.Clone()})
	}
	for _, m := range res.Ready {
		tx.emit(events.MatchReady, events.MatchReadyPayload{Match: m.Clone()})
	}
}

// creditBye counts an automatic advance. In Swiss a bye scores as a win.
func creditBye(t *models.Tournament, m *models.Match) {
	if m.WinnerID == "" {
		return
	}
	p, ok := t.Participant(m.WinnerID)
	if !ok {
		return
	}
	p.Stats.Byes++
	if t.Format == models.FormatSwiss {
		p.Stats.Wins++
	}
}

func roundComplete(t *models.Tournament, round *models.Round) bool {
	for _, id := range round.MatchIDs {
		m, ok := t.MatchByID(id)
		if !ok || !m.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// advance moves currentRound past every finished round, generating lazy rounds
// as needed, and completes the tournament once nothing is left to play.
func (r *Registry) advance(ctx context.Context, tx *txn) error {
	t := tx.t
	for {
		round := t.CurrentRoundRef()
		if round == nil || !roundComplete(t, round) {
			return nil
		}
		tx.emit(events.RoundComplete, events.RoundCompletePayload{Round: round.Number, Name: round.Name})

		if t.Format == models.FormatBattleRoyale {
			if err := assignBattleRoyalePlacements(t, round); err != nil {
				return err
			}
		}

		if t.CurrentRound < len(t.Rounds) {
			t.CurrentRound++
			continue
		}

		generated, err := r.generateNextRound(ctx, tx)
		if err != nil {
			return err
		}
		if !generated {
			return r.complete(tx)
		}
		t.CurrentRound++
	}
}

// hasMoreRounds reports whether a lazily generated format still owes rounds.
func (r *Registry) hasMoreRounds(t *models.Tournament) bool {
	switch s := t.Settings.(type) {
	case *models.SwissSettings:
		return len(t.Rounds) < brackets.SwissRounds(s, len(t.Participants))
	case *models.BattleRoyaleSettings:
		last := t.Rounds[len(t.Rounds)-1]
		return len(last.MatchIDs) > 1
	default:
		return false
	}
}

func (r *Registry) generateNextRound(ctx context.Context, tx *txn) (bool, error) {
	t := tx.t
	if len(t.Rounds) == 0 || !r.hasMoreRounds(t) {
		return false, nil
	}
	gen, err := brackets.NewGenerator(t.Settings)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	rg, ok := gen.(brackets.RoundGenerator)
	if !ok {
		return false, nil
	}

	players := t.Participants
	if t.Format == models.FormatBattleRoyale {
		players = battleRoyaleQualifiers(t, t.Rounds[len(t.Rounds)-1])
	}

	round, matches, err := rg.NextRound(ctx, brackets.NextRoundParams{
		Settings:     t.Settings,
		Participants: players,
		History:      t.Matches,
		RoundNumber:  len(t.Rounds) + 1,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %s round %d: %v", ErrInternal, rg.GetName(), len(t.Rounds)+1, err)
	}

	round.Number = len(t.Rounds) + 1
	round.MatchIDs = nil
	for _, m := range matches {
		m.Round = round.Number
		t.AddMatch(m)
		round.MatchIDs = append(round.MatchIDs, m.ID)
		switch m.Status {
		case models.MatchReady:
			tx.emit(events.MatchReady, events.MatchReadyPayload{Match: m.Clone()})
		case models.MatchBye:
			creditBye(t, m)
		}
	}
	t.Rounds = append(t.Rounds, round)
	return true, nil
}

// battleRoyaleQualifiers returns the survivors of a round ordered by finishing
// position, then seed.
func battleRoyaleQualifiers(t *models.Tournament, round *models.Round) []*models.Participant {
	type ranked struct {
		p   *models.Participant
		pos int
	}
	var out []ranked
	for _, id := range round.MatchIDs {
		m, _ := t.MatchByID(id)
		for i, pid := range m.Placements {
			if i >= m.QualifyCount && m.Status != models.MatchBye {
				break
			}
			if p, ok := t.Participant(pid); ok {
				out = append(out, ranked{p: p, pos: i})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].pos != out[j].pos {
			return out[i].pos < out[j].pos
		}
		return out[i].p.Seed < out[j].p.Seed
	})
	players := make([]*models.Participant, len(out))
	for i, r := range out {
		players[i] = r.p
	}
	return players
}

// assignBattleRoyalePlacements gives everyone knocked out in round a final
// placement below the players still alive. The winner of the final gets 1.
func assignBattleRoyalePlacements(t *models.Tournament, round *models.Round) error {
	type ranked struct {
		p   *models.Participant
		pos int
	}
	var out []ranked
	survivors := 0
	for _, p := range t.Participants {
		if !p.Eliminated {
			survivors++
		}
	}
	for _, id := range round.MatchIDs {
		m, ok := t.MatchByID(id)
		if !ok {
			return fmt.Errorf("%w: round %d references unknown match %d", ErrInternal, round.Number, id)
		}
		for i, pid := range m.Placements {
			p, ok := t.Participant(pid)
			if !ok {
				return fmt.Errorf("%w: unknown participant %s in match %d", ErrInternal, pid, m.ID)
			}
			if p.Eliminated && p.EliminatedInRound == round.Number {
				out = append(out, ranked{p: p, pos: i})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].pos != out[j].pos {
			return out[i].pos < out[j].pos
		}
		return out[i].p.Seed < out[j].p.Seed
	})
	for i, r := range out {
		r.p.FinalPlacement = intPtr(survivors + i + 1)
	}
	if len(round.MatchIDs) == 1 && survivors == 1 {
		for _, p := range t.Participants {
			if !p.Eliminated {
				p.FinalPlacement = intPtr(1)
			}
		}
	}
	return nil
}
