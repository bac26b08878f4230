// Package planner turns parsed intent flags into an ordered dispatch
// plan. Planning is deterministic: identical flags always yield an
// identical plan, ordered by a fixed domain priority list rather than
// by flag insertion order.
package planner

import (
	"sort"
	"strings"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

// hintOwners maps each specialist hint to the directorate that owns it.
// Hints whose directorate is not in the plan are dropped.
var hintOwners = map[string]models.Domain{
	"branding": models.DomainMarketing,
	"content":  models.DomainMarketing,
	"campaign": models.DomainMarketing,
	"social":   models.DomainMarketing,

	"ux":       models.DomainEngineering,
	"web":      models.DomainEngineering,
	"software": models.DomainEngineering,

	"market_analysis": models.DomainResearch,
	"competitors":     models.DomainResearch,

	"filings":    models.DomainLegal,
	"compliance": models.DomainLegal,

	"audit": models.DomainSecurity,

	"accounting": models.DomainFinance,
	"payments":   models.DomainFinance,
}

// Build produces the dispatch plan for one run.
//
// A directorate is included when its flag is set. Finance is special:
// it is included and placed first whenever any directorate is
// requested, because every downstream director's payments are validated
// against the ledger Finance seeds. The remaining directorates follow
// in the fixed priority order of models.Directorates.
func Build(flags models.IntentFlags) models.DispatchPlan {
	included := make(map[models.Domain]bool)
	if flags.Finance {
		included[models.DomainFinance] = true
	}
	if flags.Legal {
		included[models.DomainLegal] = true
	}
	if flags.Security {
		included[models.DomainSecurity] = true
	}
	if flags.Engineering {
		included[models.DomainEngineering] = true
	}
	if flags.Research {
		included[models.DomainResearch] = true
	}
	if flags.Marketing {
		included[models.DomainMarketing] = true
	}

	// Every directorate can raise payment requests, so any request at
	// all pulls Finance in to seed and own the ledger.
	if flags.Any() {
		included[models.DomainFinance] = true
	}

	hints := groupHints(flags.Hints, included)

	var plan models.DispatchPlan
	for _, domain := range models.Directorates() {
		if !included[domain] {
			continue
		}
		plan.Steps = append(plan.Steps, models.PlanStep{
			ActorDomain: domain,
			Hints:       hints[domain],
		})
	}
	return plan
}

// groupHints buckets normalized hints under their owning directorate,
// dropping duplicates, unknown hints, and hints whose directorate is
// not part of the plan.
func groupHints(raw []string, included map[models.Domain]bool) map[models.Domain][]string {
	grouped := make(map[models.Domain][]string)
	seen := make(map[string]bool)

	for _, h := range raw {
		hint := strings.ToLower(strings.TrimSpace(h))
		if hint == "" || seen[hint] {
			continue
		}
		seen[hint] = true

		owner, ok := hintOwners[hint]
		if !ok || !included[owner] {
			continue
		}
		grouped[owner] = append(grouped[owner], hint)
	}

	for _, hints := range grouped {
		sort.Strings(hints)
	}
	return grouped
}
