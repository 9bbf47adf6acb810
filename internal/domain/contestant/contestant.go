// Package contestant holds the competitor model: a fixed hidden skill, an
// observable rating and the outcome tallies accumulated through simulated play.
package contestant

import (
	"fmt"
	"strconv"
)

// Rating model constants.
const (
	baseRating     = 1000
	baseSkill      = 45
	ratingPerSkill = 200
)

// ID addresses a contestant inside its Pool. Identity checks compare IDs,
// never field values.
type ID int

// String implements fmt.Stringer.
func (id ID) String() string { return "p" + strconv.Itoa(int(id)) }

// Tally holds cumulative outcome counters. Counters never decrease.
type Tally struct {
	MatchesWon  int
	MatchesLost int
	PointsWon   int
	GamesWon    int
	SetsWon     int
}

// Contestant is one simulated competitor.
type Contestant struct {
	ID           ID
	Name         string
	SurveyRating float64
	Rating       float64

	skill    int
	tally    Tally
	recorded int
}

// ProvisionalRating maps a skill onto the rating scale.
func ProvisionalRating(skill int) float64 {
	return baseRating + float64(skill-baseSkill)*ratingPerSkill
}

// New creates a contestant rated at its provisional rating.
// Returns ErrInvalidSkill when skill is not positive.
func New(id ID, name string, skill int, survey float64) (*Contestant, error) {
	if skill <= 0 {
		return nil, fmt.Errorf("contestant %s skill %d: %w", name, skill, ErrInvalidSkill)
	}
	if name == "" {
		name = id.String()
	}
	return &Contestant{
		ID:           id,
		Name:         name,
		SurveyRating: survey,
		Rating:       ProvisionalRating(skill),
		skill:        skill,
	}, nil
}

// Skill returns the hidden ground-truth strength.
func (c *Contestant) Skill() int { return c.skill }

// Tally returns a copy of the outcome counters.
func (c *Contestant) Tally() Tally { return c.tally }

// MatchesPlayed returns won plus lost matches.
func (c *Contestant) MatchesPlayed() int { return c.tally.MatchesWon + c.tally.MatchesLost }

// Recorded returns the number of matches the rating engine counted toward experience.
func (c *Contestant) Recorded() int { return c.recorded }

// MarkRecorded counts one rated match toward experience.
func (c *Contestant) MarkRecorded() { c.recorded++ }

// WinPoint credits one point.
func (c *Contestant) WinPoint() { c.tally.PointsWon++ }

// WinGame credits one game.
func (c *Contestant) WinGame() { c.tally.GamesWon++ }

// WinSet credits one set.
func (c *Contestant) WinSet() { c.tally.SetsWon++ }

// FinishMatch credits a match win or loss.
func (c *Contestant) FinishMatch(won bool) {
	if won {
		c.tally.MatchesWon++
		return
	}
	c.tally.MatchesLost++
}

// Clone returns an independent copy sharing no state with c.
func (c *Contestant) Clone() *Contestant {
	cp := *c
	return &cp
}

// Snapshot is the read-only view handed to reporting.
type Snapshot struct {
	ID           ID      `json:"id"`
	Name         string  `json:"name"`
	Skill        int     `json:"skill"`
	SurveyRating float64 `json:"survey_rating"`
	Rating       float64 `json:"rating"`
	MatchesWon   int     `json:"matches_won"`
	MatchesLost  int     `json:"matches_lost"`
	Recorded     int     `json:"recorded"`
}

// Snapshot captures the current state.
func (c *Contestant) Snapshot() Snapshot {
	return Snapshot{
		ID:           c.ID,
		Name:         c.Name,
		Skill:        c.skill,
		SurveyRating: c.SurveyRating,
		Rating:       c.Rating,
		MatchesWon:   c.tally.MatchesWon,
		MatchesLost:  c.tally.MatchesLost,
		Recorded:     c.recorded,
	}
}

func (c *Contestant) String() string {
	return fmt.Sprintf("Name: %s Skill: %d Rating: %.1f Wins: %d Losses: %d",
		c.Name, c.skill, c.Rating, c.tally.MatchesWon, c.tally.MatchesLost)
}
