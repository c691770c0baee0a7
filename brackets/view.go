// Package brackets turns the knockout fixtures into the payload the
// front-end bracket-drawing component consumes: five ordered rounds of
// seeds plus an index from the component's sequential match numbering
// back to application match IDs.
package brackets

import (
	"errors"
	"fmt"
	"time"

	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/predictions"
)

var ErrBracketShape = errors.New("knockout fixtures do not form a full five-round bracket")

// roundSizes is the fixed shape: matches per round from the round of 32
// down to the final.
var roundSizes = map[models.MatchPhase]int{
	models.PhaseRoundOf32:    16,
	models.PhaseRoundOf16:    8,
	models.PhaseQuarterFinal: 4,
	models.PhaseSemiFinal:    2,
	models.PhaseFinal:        1,
}

var roundTitles = map[models.MatchPhase]string{
	models.PhaseRoundOf32:    "Round of 32",
	models.PhaseRoundOf16:    "Round of 16",
	models.PhaseQuarterFinal: "Quarter-finals",
	models.PhaseSemiFinal:    "Semi-finals",
	models.PhaseFinal:        "Final",
}

// TeamSlot is one side of a seed. TeamID is nil while the slot waits on
// an earlier round.
type TeamSlot struct {
	TeamID   *int    `json:"team_id,omitempty"`
	Name     string  `json:"name"`
	CrestURL *string `json:"crest_url,omitempty"`
	Winner   bool    `json:"winner"`
}

// Seed is one drawable match.
type Seed struct {
	MatchNumber int                `json:"match_number"`
	MatchID     int                `json:"match_id"`
	Date        time.Time          `json:"date"`
	Locked      bool               `json:"locked"`
	Teams       [2]TeamSlot        `json:"teams"`
	Prediction  *models.Prediction `json:"prediction,omitempty"`
	Outcome     *models.Side       `json:"outcome,omitempty"`
}

type Round struct {
	Phase models.MatchPhase `json:"phase"`
	Title string            `json:"title"`
	Seeds []Seed            `json:"seeds"`
}

// View is the full renderer payload. Index maps the drawing component's
// match numbers back to match IDs for click handling.
type View struct {
	Rounds []Round     `json:"rounds"`
	Index  map[int]int `json:"index"`
}

// BuildView assembles the renderer payload from knockout fixtures keyed
// by phase and the viewer's predictions keyed by match ID. Matches must
// already be ordered within each phase; numbering runs sequentially
// across rounds in bracket order.
func BuildView(matchesByPhase map[models.MatchPhase][]*models.Match, predictionsByMatch map[int]*models.Prediction, now time.Time) (*View, error) {
	view := &View{
		Rounds: make([]Round, 0, len(models.KnockoutPhases)),
		Index:  make(map[int]int),
	}

	number := 0
	for _, phase := range models.KnockoutPhases {
		matches := matchesByPhase[phase]
		if len(matches) != roundSizes[phase] {
			return nil, fmt.Errorf("%w: phase %s has %d matches, want %d",
				ErrBracketShape, phase, len(matches), roundSizes[phase])
		}

		round := Round{
			Phase: phase,
			Title: roundTitles[phase],
			Seeds: make([]Seed, 0, len(matches)),
		}
		for _, m := range matches {
			number++
			view.Index[number] = m.ID

			seed := Seed{
				MatchNumber: number,
				MatchID:     m.ID,
				Date:        m.KickoffTime,
				Locked:      m.Locked(now),
			}
			seed.Teams[0] = teamSlot(m.HomeTeamID, m.Home)
			seed.Teams[1] = teamSlot(m.AwayTeamID, m.Away)

			if p := predictionsByMatch[m.ID]; p != nil {
				seed.Prediction = p
				seed.Outcome = predictions.Outcome(predictions.FromPrediction(p))
				switch {
				case seed.Outcome != nil && *seed.Outcome == models.SideHome:
					seed.Teams[0].Winner = true
				case seed.Outcome != nil && *seed.Outcome == models.SideAway:
					seed.Teams[1].Winner = true
				}
			}

			round.Seeds = append(round.Seeds, seed)
		}
		view.Rounds = append(view.Rounds, round)
	}

	return view, nil
}

func teamSlot(teamID *int, team *models.Team) TeamSlot {
	slot := TeamSlot{TeamID: teamID, Name: "TBD"}
	if team != nil {
		slot.Name = team.Name
		slot.CrestURL = team.CrestURL
	}
	return slot
}
