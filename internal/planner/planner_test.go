package planner

import (
	"reflect"
	"testing"

	"github.com/boardroom-dev/boardroom/pkg/models"
)

func domains(plan models.DispatchPlan) []models.Domain {
	var out []models.Domain
	for _, s := range plan.Steps {
		out = append(out, s.ActorDomain)
	}
	return out
}

func TestFinanceAlwaysFirst(t *testing.T) {
	tests := []struct {
		name  string
		flags models.IntentFlags
		want  []models.Domain
	}{
		{
			name:  "finance and marketing",
			flags: models.IntentFlags{Finance: true, Marketing: true},
			want:  []models.Domain{models.DomainFinance, models.DomainMarketing},
		},
		{
			name:  "marketing alone still pulls finance in first",
			flags: models.IntentFlags{Marketing: true},
			want:  []models.Domain{models.DomainFinance, models.DomainMarketing},
		},
		{
			name:  "finance alone",
			flags: models.IntentFlags{Finance: true},
			want:  []models.Domain{models.DomainFinance},
		},
		{
			name: "all directorates follow priority order",
			flags: models.IntentFlags{
				Finance: true, Legal: true, Security: true,
				Engineering: true, Research: true, Marketing: true,
			},
			want: []models.Domain{
				models.DomainFinance, models.DomainLegal, models.DomainSecurity,
				models.DomainEngineering, models.DomainResearch, models.DomainMarketing,
			},
		},
		{
			name:  "no flags yields empty plan",
			flags: models.IntentFlags{},
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan := Build(tc.flags)
			if got := domains(plan); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("plan order = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	flags := models.IntentFlags{
		Engineering: true, Marketing: true, Research: true,
		Hints: []string{"social", "web", "branding", "ux"},
	}

	first := Build(flags)
	second := Build(flags)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("plans diverged:\n%+v\n%+v", first, second)
	}
}

func TestHintAttachment(t *testing.T) {
	flags := models.IntentFlags{
		Engineering: true,
		Marketing:   true,
		Hints:       []string{"Branding", "social", "web", "UX", "social"},
	}

	plan := Build(flags)
	byDomain := make(map[models.Domain][]string)
	for _, s := range plan.Steps {
		byDomain[s.ActorDomain] = s.Hints
	}

	if want := []string{"branding", "social"}; !reflect.DeepEqual(byDomain[models.DomainMarketing], want) {
		t.Errorf("marketing hints = %v, want %v", byDomain[models.DomainMarketing], want)
	}
	if want := []string{"ux", "web"}; !reflect.DeepEqual(byDomain[models.DomainEngineering], want) {
		t.Errorf("engineering hints = %v, want %v", byDomain[models.DomainEngineering], want)
	}
	if got := byDomain[models.DomainFinance]; len(got) != 0 {
		t.Errorf("finance picked up stray hints: %v", got)
	}
}

func TestHintsWithoutDirectorateAreDropped(t *testing.T) {
	flags := models.IntentFlags{
		Finance: true,
		Hints:   []string{"branding", "web", "bogus"},
	}

	plan := Build(flags)
	for _, s := range plan.Steps {
		if len(s.Hints) != 0 {
			t.Errorf("step %s carries hints %v for absent directorates", s.ActorDomain, s.Hints)
		}
	}
}
