package debate

import "github.com/soyeahso/arena/internal/agent"

// Pairing selects the questioner and responder for a cross-examination
// round. Round 1 has the first participant question the second; round 2
// swaps them. With a single participant both roles fall to it; with none,
// both are nil.
func Pairing(round int, participants []*agent.Debater) (questioner, responder *agent.Debater) {
	switch {
	case len(participants) == 0:
		return nil, nil
	case len(participants) == 1:
		return participants[0], participants[0]
	case round == 2:
		return participants[1], participants[0]
	default:
		return participants[0], participants[1]
	}
}
