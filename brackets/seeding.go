package brackets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

// Shuffler is satisfied by *rand.Rand.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

var ErrNoRandomSource = errors.New("random seeding requires a random source")

// Seed orders participants by policy and assigns Seed = index + 1.
// The input slice is not reordered; the participants themselves are updated.
func Seed(participants []*models.Participant, policy models.SeedingPolicy, rng Shuffler) ([]*models.Participant, error) {
	seeded := make([]*models.Participant, len(participants))
	copy(seeded, participants)

	sort.SliceStable(seeded, func(i, j int) bool {
		return seeded[i].RegistrationOrder < seeded[j].RegistrationOrder
	})

	switch policy {
	case models.SeedByRating:
		sort.SliceStable(seeded, func(i, j int) bool {
			return seeded[i].Rating > seeded[j].Rating
		})
	case models.SeedRandom:
		if rng == nil {
			return nil, ErrNoRandomSource
		}
		rng.Shuffle(len(seeded), func(i, j int) {
			seeded[i], seeded[j] = seeded[j], seeded[i]
		})
	case models.SeedByRegistrationOrder, "":
	default:
		return nil, fmt.Errorf("unknown seeding policy %q", policy)
	}

	for i, p := range seeded {
		p.Seed = i + 1
	}
	return seeded, nil
}
