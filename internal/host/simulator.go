// Package host simulates the chain that drives the rewards engine: it owns
// the era and session schedule, the validator set and whitelist, and the
// liveness oracle, and feeds block authorship and boundary hooks into the
// engine one block at a time.
package host

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/rewards"
	"github.com/eigerco/erarewards/pkg/log"
)

// Engine is the part of the rewards engine the simulator drives.
type Engine interface {
	NoteBlockAuthor(validator crypto.ValidatorID) error
	SessionEnded(session rewards.SessionIndex) error
	OnEraStart(era rewards.EraIndex, sessionStart rewards.SessionIndex, externalIndex uint32) error
	OnEraEnd(era rewards.EraIndex) (rewards.EraOutcome, error)
	BlocksProducedInEra(era rewards.EraIndex) (uint32, error)
}

var _ Engine = (*rewards.Engine)(nil)

const (
	DefaultSlotDuration = 6 * time.Second
	// DefaultGenesisTime is 2025-01-01T00:00:00Z in milliseconds.
	DefaultGenesisTime uint64 = 1_735_689_600_000
)

// Config describes the simulated validator set and schedule.
type Config struct {
	Validators int
	// Whitelisted marks the first Whitelisted validators as whitelisted.
	Whitelisted int
	// Offline validators neither author blocks nor send heartbeats.
	Offline []int
	// Idle validators never author blocks. Every validator that is not
	// offline sends a heartbeat each session.
	Idle             []int
	SessionsPerEra   uint32
	BlocksPerSession uint32
	SlotDuration     time.Duration
	GenesisTime      uint64
}

func DefaultConfig() Config {
	return Config{
		Validators:       4,
		SessionsPerEra:   6,
		BlocksPerSession: 100,
		SlotDuration:     DefaultSlotDuration,
		GenesisTime:      DefaultGenesisTime,
	}
}

func (c Config) validate() error {
	if c.Validators <= 0 {
		return fmt.Errorf("%w: at least one validator is required", ErrInvalidSetup)
	}
	if c.Whitelisted < 0 || c.Whitelisted > c.Validators {
		return fmt.Errorf("%w: %d whitelisted of %d validators", ErrInvalidSetup, c.Whitelisted, c.Validators)
	}
	if c.SessionsPerEra == 0 || c.BlocksPerSession == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSetup, ErrEmptySchedule)
	}
	for _, list := range [][]int{c.Offline, c.Idle} {
		for _, i := range list {
			if i < 0 || i >= c.Validators {
				return fmt.Errorf("%w: %w: %d", ErrInvalidSetup, ErrUnknownIndex, i)
			}
		}
	}
	return nil
}

// EraReport summarizes one simulated era.
type EraReport struct {
	Era          rewards.EraIndex
	StartSession rewards.SessionIndex
	Sessions     uint32
	Blocks       uint32
	Outcome      rewards.EraOutcome
}

// Simulator implements the engine's era source, validator source, liveness
// oracle and whitelist source. Validators author blocks round robin, skipping
// offline and idle ones.
type Simulator struct {
	cfg         Config
	engine      Engine
	validators  []crypto.ValidatorID
	whitelisted []crypto.ValidatorID
	offline     crypto.ValidatorSet
	idle        crypto.ValidatorSet
	members     crypto.ValidatorSet

	era         rewards.EraIndex
	eraStart    *uint64
	inEra       bool
	eraSessions map[rewards.EraIndex]rewards.SessionIndex

	session    rewards.SessionIndex
	authored   crypto.ValidatorSet
	heartbeats crypto.ValidatorSet

	slot   uint64
	cursor int
}

// New builds a simulator. The engine is attached afterwards with Attach
// because the engine itself depends on the simulator.
func New(cfg Config) (*Simulator, error) {
	if cfg.SlotDuration == 0 {
		cfg.SlotDuration = DefaultSlotDuration
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:         cfg,
		validators:  make([]crypto.ValidatorID, cfg.Validators),
		offline:     crypto.ValidatorSet{},
		idle:        crypto.ValidatorSet{},
		eraSessions: make(map[rewards.EraIndex]rewards.SessionIndex),
		authored:    crypto.ValidatorSet{},
		heartbeats:  crypto.ValidatorSet{},
	}
	for i := range s.validators {
		s.validators[i] = SimulatedValidator(i)
	}
	s.members = crypto.NewValidatorSet(s.validators)
	s.whitelisted = append([]crypto.ValidatorID(nil), s.validators[:cfg.Whitelisted]...)
	for _, i := range cfg.Offline {
		s.offline.Add(s.validators[i])
	}
	for _, i := range cfg.Idle {
		s.idle.Add(s.validators[i])
	}
	return s, nil
}

// SimulatedValidator derives the id of the validator at index.
func SimulatedValidator(index int) crypto.ValidatorID {
	seed := binary.BigEndian.AppendUint32([]byte("erarewards/validator/"), uint32(index))
	return crypto.ValidatorID(crypto.HashData(seed))
}

func (s *Simulator) Attach(engine Engine) {
	s.engine = engine
}

func (s *Simulator) ActiveEra() rewards.ActiveEraInfo {
	return rewards.ActiveEraInfo{Index: s.era, Start: s.eraStart}
}

func (s *Simulator) EraToSessionStart(era rewards.EraIndex) (rewards.SessionIndex, bool) {
	session, ok := s.eraSessions[era]
	return session, ok
}

func (s *Simulator) Validators() []crypto.ValidatorID {
	return s.validators
}

func (s *Simulator) WhitelistedValidators() []crypto.ValidatorID {
	return s.whitelisted
}

// IsOnline reports whether validator authored a block or sent a heartbeat
// in the current session.
func (s *Simulator) IsOnline(validator crypto.ValidatorID) bool {
	return s.authored.Has(validator) || s.heartbeats.Has(validator)
}

// RecordHeartbeat marks validator online for the current session.
func (s *Simulator) RecordHeartbeat(validator crypto.ValidatorID) error {
	if !s.members.Has(validator) {
		return fmt.Errorf("heartbeat from %s: %w", validator, ErrUnknownValidator)
	}
	s.heartbeats.Add(validator)
	return nil
}

func (s *Simulator) Session() rewards.SessionIndex {
	return s.session
}

// StartEra opens the next era at the current session.
func (s *Simulator) StartEra() error {
	if s.engine == nil {
		return ErrNoEngine
	}
	if s.inEra {
		return fmt.Errorf("start era %d: %w", s.era, ErrEraInProgress)
	}
	s.eraSessions[s.era] = s.session
	s.eraStart = nil
	s.inEra = true
	log.Host.Debug().Uint32("era", uint32(s.era)).Uint32("session", uint32(s.session)).Msg("era started")
	return s.engine.OnEraStart(s.era, s.session, uint32(s.era))
}

// ProduceBlock advances one slot. The block author is the next validator in
// round robin order that is neither offline nor idle; ok is false when no
// validator can author.
func (s *Simulator) ProduceBlock() (author crypto.ValidatorID, ok bool, err error) {
	if s.engine == nil {
		return author, false, ErrNoEngine
	}
	if !s.inEra {
		return author, false, ErrNoActiveEra
	}

	now := s.cfg.GenesisTime + s.slot*uint64(s.cfg.SlotDuration.Milliseconds())
	s.slot++
	if s.eraStart == nil {
		s.eraStart = &now
	}

	for range s.validators {
		candidate := s.validators[s.cursor]
		s.cursor = (s.cursor + 1) % len(s.validators)
		if s.offline.Has(candidate) || s.idle.Has(candidate) {
			continue
		}
		if err := s.engine.NoteBlockAuthor(candidate); err != nil {
			return author, false, err
		}
		s.authored.Add(candidate)
		return candidate, true, nil
	}
	log.Host.Warn().Uint64("slot", s.slot-1).Msg("no validator available to author block")
	return author, false, nil
}

// EndSession collects a heartbeat from every validator that is not offline,
// scores the session and moves to the next one.
func (s *Simulator) EndSession() error {
	if s.engine == nil {
		return ErrNoEngine
	}
	for _, v := range s.validators {
		if s.offline.Has(v) {
			continue
		}
		if err := s.RecordHeartbeat(v); err != nil {
			return err
		}
	}
	if err := s.engine.SessionEnded(s.session); err != nil {
		return fmt.Errorf("end session %d: %w", s.session, err)
	}
	s.authored = crypto.ValidatorSet{}
	s.heartbeats = crypto.ValidatorSet{}
	s.session++
	return nil
}

// EndEra finalizes the era in progress.
func (s *Simulator) EndEra() (EraReport, error) {
	if s.engine == nil {
		return EraReport{}, ErrNoEngine
	}
	if !s.inEra {
		return EraReport{}, ErrNoActiveEra
	}
	blocks, err := s.engine.BlocksProducedInEra(s.era)
	if err != nil {
		return EraReport{}, err
	}
	outcome, err := s.engine.OnEraEnd(s.era)
	if err != nil {
		return EraReport{}, fmt.Errorf("end era %d: %w", s.era, err)
	}

	start := s.eraSessions[s.era]
	report := EraReport{
		Era:          s.era,
		StartSession: start,
		Sessions:     uint32(s.session - start),
		Blocks:       blocks,
		Outcome:      outcome,
	}
	log.Host.Info().
		Uint32("era", uint32(report.Era)).
		Uint32("blocks", report.Blocks).
		Stringer("outcome", report.Outcome).
		Msg("era ended")

	s.inEra = false
	s.era++
	return report, nil
}

// RunEra plays one full era: SessionsPerEra sessions of BlocksPerSession
// blocks each.
func (s *Simulator) RunEra() (EraReport, error) {
	if err := s.StartEra(); err != nil {
		return EraReport{}, err
	}
	for range s.cfg.SessionsPerEra {
		for range s.cfg.BlocksPerSession {
			if _, _, err := s.ProduceBlock(); err != nil {
				return EraReport{}, err
			}
		}
		if err := s.EndSession(); err != nil {
			return EraReport{}, err
		}
	}
	return s.EndEra()
}

// Run plays n eras and returns their reports.
func (s *Simulator) Run(n int) ([]EraReport, error) {
	reports := make([]EraReport, 0, n)
	for range n {
		report, err := s.RunEra()
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
