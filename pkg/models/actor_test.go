package models

import "testing"

func TestTierValid(t *testing.T) {
	tests := []struct {
		name string
		tier Tier
		want bool
	}{
		{"executive", TierExecutive, true},
		{"director", TierDirector, true},
		{"specialist", TierSpecialist, true},
		{"zero", Tier(0), false},
		{"out of range", Tier(4), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tier.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDomainValid(t *testing.T) {
	for _, d := range Directorates() {
		if !d.Valid() {
			t.Errorf("directorate %q should be valid", d)
		}
	}
	if !DomainStrategy.Valid() {
		t.Error("strategy should be valid")
	}
	if Domain("janitorial").Valid() {
		t.Error("unknown domain should be invalid")
	}
}

func TestDirectoratesExcludeStrategy(t *testing.T) {
	for _, d := range Directorates() {
		if d == DomainStrategy {
			t.Fatal("strategy must not appear as a directorate")
		}
	}
}

func TestActorCanInvoke(t *testing.T) {
	exec := Actor{ID: "e", Tier: TierExecutive, Domain: DomainStrategy}
	dir := Actor{ID: "d", Tier: TierDirector, Domain: DomainFinance}
	spec := Actor{ID: "s", Tier: TierSpecialist, Domain: DomainFinance}

	tests := []struct {
		name   string
		caller Actor
		target Actor
		want   bool
	}{
		{"executive invokes director", exec, dir, true},
		{"director invokes specialist", dir, spec, true},
		{"executive skips to specialist", exec, spec, false},
		{"specialist invokes executive", spec, exec, false},
		{"specialist invokes director", spec, dir, false},
		{"director invokes executive", dir, exec, false},
		{"director invokes director", dir, dir, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.caller.CanInvoke(tc.target); got != tc.want {
				t.Errorf("CanInvoke() = %v, want %v", got, tc.want)
			}
		})
	}
}
