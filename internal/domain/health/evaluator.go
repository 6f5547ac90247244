// Package health implements the deterministic opportunity classification
// engine: phase derivation from milestone evidence plus an ordered cascade of
// timing rules over the timeline. Pure computation; the caller supplies the
// clock, the evaluator never reads it.
package health

import (
	"errors"
	"fmt"
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
)

// ErrInvalidRecord groups evaluation input validation errors. A record that
// fails validation is left unevaluated pending correction, never auto-fixed.
var ErrInvalidRecord = errors.New("opportunity record is not evaluable")

// PhaseOverride is an explicit, reason-carrying phase change. It is the only
// path to a phase regression; the evaluator records it into the health reason
// but never triggers one itself.
type PhaseOverride struct {
	Phase  int
	Reason string
}

// Input carries everything one evaluation depends on.
type Input struct {
	Timeline    *entity.MilestoneTimeline
	Phase       int // 1..4, authoritative unless milestone evidence contradicts it
	Probability int // 0..100

	// Newer of the two decides the "no update" rules. Zero values disable them.
	LastModifiedLocal  time.Time
	LastModifiedRemote time.Time

	Today    time.Time // mandatory; a zero Today is a caller error
	Override *PhaseOverride
}

// Result of one evaluation.
type Result struct {
	Phase             int
	Signal            string
	Reason            string
	RequiresAttention bool
}

// Evaluate classifies one opportunity. Deterministic: equal inputs produce
// equal results, including back-dated recomputation with a historical Today.
func Evaluate(in Input) (Result, error) {
	if err := Validate(in); err != nil {
		return Result{}, err
	}

	phase := derivePhase(in.Phase, in.Timeline)
	if in.Override != nil {
		phase = in.Override.Phase
	}

	signal, reason := classify(ruleContext{
		timeline:    in.Timeline,
		phase:       phase,
		probability: in.Probability,
		today:       in.Today,
		lastTouched: newerOf(in.LastModifiedLocal, in.LastModifiedRemote),
	})

	if in.Override != nil {
		reason = fmt.Sprintf("%s; phase set to %d: %s", reason, in.Override.Phase, in.Override.Reason)
	}

	return Result{
		Phase:             phase,
		Signal:            signal,
		Reason:            reason,
		RequiresAttention: signal == entity.SignalRed || signal == entity.SignalBlocked,
	}, nil
}

// Validate checks the evaluation input: presence of timeline and clock,
// ranges, and milestone ordering. All violations are reported together.
func Validate(in Input) error {
	if in.Timeline == nil {
		return fmt.Errorf("%w: nil timeline", ErrInvalidRecord)
	}
	if in.Today.IsZero() {
		return fmt.Errorf("%w: today is required", ErrInvalidRecord)
	}

	var errs []error
	if in.Phase < entity.PhaseOpportunity || in.Phase > entity.PhaseRevenue {
		errs = append(errs, fmt.Errorf("phase %d out of range [1,4]", in.Phase))
	}
	if in.Probability < 0 || in.Probability > 100 {
		errs = append(errs, fmt.Errorf("probability %d out of range [0,100]", in.Probability))
	}
	if in.Override != nil {
		if in.Override.Phase < entity.PhaseOpportunity || in.Override.Phase > entity.PhaseRevenue {
			errs = append(errs, fmt.Errorf("override phase %d out of range [1,4]", in.Override.Phase))
		}
		if in.Override.Reason == "" {
			errs = append(errs, fmt.Errorf("phase override requires a reason"))
		}
	}
	errs = append(errs, orderingViolations(in.Timeline)...)

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidRecord}, errs...)...)
	}
	return nil
}

// orderingViolations reports every pair of set milestones that decreases in
// canonical O2R order. Violations are reported, never silently corrected.
func orderingViolations(t *entity.MilestoneTimeline) []error {
	var errs []error
	var prev entity.Milestone
	for _, m := range t.Ordered() {
		if m.Date == nil {
			continue
		}
		if prev.Date != nil && m.Date.Before(*prev.Date) {
			errs = append(errs, fmt.Errorf("%s (%s) precedes %s (%s)",
				m.Name, m.Date.Format("2006-01-02"), prev.Name, prev.Date.Format("2006-01-02")))
		}
		prev = m
	}
	return errs
}

// derivePhase advances the input phase when milestone evidence contradicts
// it: a proposal implies at least phase 2, a purchase order phase 3, an
// invoice phase 4. It never regresses.
func derivePhase(phase int, t *entity.MilestoneTimeline) int {
	evidence := entity.PhaseOpportunity
	switch {
	case t.InvoiceDate != nil:
		evidence = entity.PhaseRevenue
	case t.PODate != nil:
		evidence = entity.PhaseExecution
	case t.ProposalDate != nil:
		evidence = entity.PhaseProposal
	}
	if evidence > phase {
		return evidence
	}
	return phase
}

func newerOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// truncateDay strips the time of day, keeping the calendar date in UTC.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole calendar days from a to b. Same day is 0, not 1.
func daysBetween(a, b time.Time) int {
	return int(truncateDay(b).Sub(truncateDay(a)).Hours() / 24)
}
