package engine

import (
	"fmt"
	"time"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/election"
	"github.com/talgya/capitol/internal/entropy"
	"github.com/talgya/capitol/internal/govstats"
	"github.com/talgya/capitol/internal/legislature"
	"github.com/talgya/capitol/internal/treasury"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Streams records the position of every random stream.
type Streams struct {
	Economy     entropy.State `json:"economy"`
	Legislature entropy.State `json:"legislature"`
	Election    entropy.State `json:"election"`
}

// Snapshot is the full game as plain data.
type Snapshot struct {
	Version         int                       `json:"version"`
	Seed            int64                     `json:"seed"`
	FiscalYearStart time.Month                `json:"fiscal_year_start"`
	Date            time.Time                 `json:"date"`
	Day             int                       `json:"day"`
	Character       character.State           `json:"character"`
	Economy         economy.ModelState        `json:"economy"`
	Treasury        []treasury.LedgerState    `json:"treasury"`
	Legislature     legislature.PipelineState `json:"legislature"`
	Elections       election.CycleState       `json:"elections"`
	Stats           *govstats.Stats           `json:"stats,omitempty"`
	Events          []Event                   `json:"events,omitempty"`
	Streams         Streams                   `json:"streams"`
}

// Snapshot captures the game.
func (s *Simulation) Snapshot() Snapshot {
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return Snapshot{
		Version:         SnapshotVersion,
		Seed:            s.seed,
		FiscalYearStart: s.fiscalYearStart,
		Date:            s.Date,
		Day:             s.Day,
		Character:       s.Character,
		Economy:         s.economy.State(),
		Treasury:        s.book.States(),
		Legislature:     s.legislature.State(),
		Elections:       s.elections.State(),
		Stats:           s.stats.Last(),
		Events:          events,
		Streams: Streams{
			Economy:     s.economyRNG.State(),
			Legislature: s.legislatureRNG.State(),
			Election:    s.electionRNG.State(),
		},
	}
}

// Restore rebuilds a game from a snapshot. The random streams resume where they
// stopped, so the restored game plays out exactly like the original would have.
func Restore(snap Snapshot) (*Simulation, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("restore: snapshot version %d, want %d", snap.Version, SnapshotVersion)
	}
	s := &Simulation{
		Character:       snap.Character,
		Date:            snap.Date,
		Day:             snap.Day,
		Events:          snap.Events,
		seed:            snap.Seed,
		fiscalYearStart: snap.FiscalYearStart,
		economyRNG:      entropy.Restore(snap.Streams.Economy),
		legislatureRNG:  entropy.Restore(snap.Streams.Legislature),
		electionRNG:     entropy.Restore(snap.Streams.Election),
	}

	var err error
	if s.economy, err = economy.RestoreModel(snap.Economy, s.economyRNG); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	if s.book, err = treasury.RestoreBook(snap.Treasury); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	if s.legislature, err = legislature.RestorePipeline(snap.Legislature, s.legislatureRNG); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	if s.elections, err = election.RestoreCycle(snap.Elections, s.electionRNG); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	for _, j := range economy.Jurisdictions {
		if s.book.Ledger(j) == nil {
			return nil, fmt.Errorf("restore: no %s ledger", j)
		}
	}
	s.stats.Restore(snap.Stats)
	return s, nil
}
