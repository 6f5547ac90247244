package health

import (
	"fmt"
	"strings"
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/domain/entity"
)

// Rule thresholds in days / percent.
const (
	proposalStallDays   = 30
	paymentOverdueDays  = 45
	kickoffDelayDays    = 14
	executionLongDays   = 60
	noUpdateRedDays     = 14
	noUpdateYellowDays  = 7
	criticalDelayExcess = 14 // days over the expected gap that make a delay critical
	highProbability     = 80
	lowProbability      = 20
)

// expectedGaps are the allowed inter-milestone gaps in days. They coincide
// with the stall thresholds above so the two rule families agree at the
// boundaries: the stall rules cover a missing next milestone, the delay rules
// cover a completed-but-late pair.
var expectedGaps = []struct {
	from, to string
	days     int
}{
	{entity.MilestoneProposal, entity.MilestonePO, proposalStallDays},
	{entity.MilestonePO, entity.MilestoneKickoff, kickoffDelayDays},
	{entity.MilestoneKickoff, entity.MilestoneInvoice, executionLongDays},
	{entity.MilestoneInvoice, entity.MilestonePayment, paymentOverdueDays},
	{entity.MilestonePayment, entity.MilestoneRevenue, kickoffDelayDays},
}

// ruleContext is the read-only view the predicates run against. phase is the
// derived phase, after milestone evidence and overrides.
type ruleContext struct {
	timeline    *entity.MilestoneTimeline
	phase       int
	probability int
	today       time.Time
	lastTouched time.Time
}

// rule is one entry of the classification cascade. check returns one message
// per hit; no hits means the rule did not fire.
type rule struct {
	name     string
	severity string
	check    func(rc ruleContext) []string
}

// catalog is evaluated top to bottom; red rules precede yellow rules so the
// first matching severity wins and the reported messages keep a stable order.
var catalog = []rule{
	{"proposal stalled", entity.SignalRed, proposalStalled},
	{"payment overdue", entity.SignalRed, paymentOverdue},
	{"deal overdue", entity.SignalRed, dealOverdue},
	{"critical milestone delay", entity.SignalRed, criticalDelay},
	{"no recent update", entity.SignalRed, noUpdateRed},
	{"kickoff delayed", entity.SignalYellow, kickoffDelayed},
	{"execution running long", entity.SignalYellow, executionLong},
	{"high-probability stall", entity.SignalYellow, highProbStall},
	{"low-probability drag", entity.SignalYellow, lowProbDrag},
	{"update overdue", entity.SignalYellow, noUpdateYellow},
	{"minor milestone delay", entity.SignalYellow, minorDelay},
}

// classify runs the cascade: blocked wins outright, any red hit wins over
// yellow, and two or more yellow hits escalate to red in a single,
// non-recursive pass. The reason joins every message at the winning severity.
func classify(rc ruleContext) (signal, reason string) {
	if rc.timeline.Blocked {
		reason = rc.timeline.BlockedReason
		if reason == "" {
			reason = "external blocker"
		}
		return entity.SignalBlocked, reason
	}

	var reds, yellows []string
	for _, r := range catalog {
		hits := r.check(rc)
		if len(hits) == 0 {
			continue
		}
		if r.severity == entity.SignalRed {
			reds = append(reds, hits...)
		} else {
			yellows = append(yellows, hits...)
		}
	}

	switch {
	case len(reds) > 0:
		return entity.SignalRed, strings.Join(reds, "; ")
	case len(yellows) >= 2:
		return entity.SignalRed, "multiple risk factors: " + strings.Join(yellows, "; ")
	case len(yellows) == 1:
		return entity.SignalYellow, yellows[0]
	default:
		return entity.SignalGreen, "on track"
	}
}

func proposalStalled(rc ruleContext) []string {
	t := rc.timeline
	if t.ProposalDate == nil || t.PODate != nil {
		return nil
	}
	d := daysBetween(*t.ProposalDate, rc.today)
	if d < proposalStallDays {
		return nil
	}
	return []string{fmt.Sprintf("proposal stalled: no purchase order %d days after proposal", d)}
}

func paymentOverdue(rc ruleContext) []string {
	t := rc.timeline
	if t.InvoiceDate == nil || t.PaymentDate != nil {
		return nil
	}
	d := daysBetween(*t.InvoiceDate, rc.today)
	if d < paymentOverdueDays {
		return nil
	}
	return []string{fmt.Sprintf("payment overdue: invoice unpaid for %d days", d)}
}

func dealOverdue(rc ruleContext) []string {
	t := rc.timeline
	if t.ClosingDate == nil || t.RevenueDate != nil {
		return nil
	}
	d := daysBetween(*t.ClosingDate, rc.today)
	if d <= 0 {
		return nil
	}
	return []string{fmt.Sprintf("deal overdue: %d days past expected close without revenue", d)}
}

func criticalDelay(rc ruleContext) []string {
	return milestoneDelays(rc, true)
}

func minorDelay(rc ruleContext) []string {
	return milestoneDelays(rc, false)
}

// milestoneDelays scans canonical-adjacent pairs with both dates set and
// reports those whose gap exceeds the expected gap. critical selects the
// >= criticalDelayExcess band, otherwise the (0, criticalDelayExcess) band.
func milestoneDelays(rc ruleContext, critical bool) []string {
	dates := make(map[string]*time.Time, 6)
	for _, m := range rc.timeline.Ordered() {
		dates[m.Name] = m.Date
	}

	var hits []string
	for _, g := range expectedGaps {
		from, to := dates[g.from], dates[g.to]
		if from == nil || to == nil {
			continue
		}
		excess := daysBetween(*from, *to) - g.days
		if excess <= 0 {
			continue
		}
		if critical != (excess >= criticalDelayExcess) {
			continue
		}
		label := "minor"
		if critical {
			label = "critical"
		}
		hits = append(hits, fmt.Sprintf("%s delay: %s to %s took %d days (expected %d)",
			label, g.from, g.to, daysBetween(*from, *to), g.days))
	}
	return hits
}

func noUpdateRed(rc ruleContext) []string {
	if rc.lastTouched.IsZero() {
		return nil
	}
	d := daysBetween(rc.lastTouched, rc.today)
	if d < noUpdateRedDays {
		return nil
	}
	return []string{fmt.Sprintf("no update in %d days", d)}
}

func noUpdateYellow(rc ruleContext) []string {
	if rc.lastTouched.IsZero() {
		return nil
	}
	d := daysBetween(rc.lastTouched, rc.today)
	if d < noUpdateYellowDays || d >= noUpdateRedDays {
		return nil
	}
	return []string{fmt.Sprintf("no update in %d days", d)}
}

func kickoffDelayed(rc ruleContext) []string {
	t := rc.timeline
	if t.PODate == nil || t.KickoffDate != nil {
		return nil
	}
	d := daysBetween(*t.PODate, rc.today)
	if d < kickoffDelayDays {
		return nil
	}
	return []string{fmt.Sprintf("kickoff delayed: no kickoff %d days after purchase order", d)}
}

func executionLong(rc ruleContext) []string {
	t := rc.timeline
	if t.KickoffDate == nil || t.RevenueDate != nil {
		return nil
	}
	d := daysBetween(*t.KickoffDate, rc.today)
	if d < executionLongDays {
		return nil
	}
	return []string{fmt.Sprintf("execution running long: %d days since kickoff without revenue", d)}
}

func highProbStall(rc ruleContext) []string {
	t := rc.timeline
	if rc.probability < highProbability || t.ProposalDate == nil || t.PODate != nil {
		return nil
	}
	d := daysBetween(*t.ProposalDate, rc.today)
	if d < proposalStallDays {
		return nil
	}
	return []string{fmt.Sprintf("high-probability deal (%d%%) stalled at proposal for %d days", rc.probability, d)}
}

func lowProbDrag(rc ruleContext) []string {
	if rc.probability > lowProbability || rc.phase < entity.PhaseProposal {
		return nil
	}
	return []string{fmt.Sprintf("low probability (%d%%) deal consuming delivery resources in phase %d", rc.probability, rc.phase)}
}
