// Package models defines the shared data types for Boardroom.
// It has no dependencies on other Boardroom packages so every layer
// can import it freely.
package models

// Tier represents an actor's authority level in the company hierarchy.
type Tier int

const (
	// TierExecutive is the top-level strategic authority.
	TierExecutive Tier = 1
	// TierDirector is a domain director invoked by the executive.
	TierDirector Tier = 2
	// TierSpecialist is a specialist worker invoked by a director.
	TierSpecialist Tier = 3
)

// String returns a human-readable representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierExecutive:
		return "executive"
	case TierDirector:
		return "director"
	case TierSpecialist:
		return "specialist"
	default:
		return "unknown"
	}
}

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierExecutive, TierDirector, TierSpecialist:
		return true
	default:
		return false
	}
}

// Domain represents a business domain an actor belongs to.
type Domain string

const (
	// DomainFinance owns budget allocation and payment oversight.
	DomainFinance Domain = "finance"
	// DomainEngineering owns product and software delivery.
	DomainEngineering Domain = "engineering"
	// DomainResearch owns market and technical research.
	DomainResearch Domain = "research"
	// DomainLegal owns filings, contracts, and compliance.
	DomainLegal Domain = "legal"
	// DomainMarketing owns brand, content, and campaigns.
	DomainMarketing Domain = "marketing"
	// DomainSecurity owns risk and security review.
	DomainSecurity Domain = "security"
	// DomainStrategy is the executive's own domain.
	DomainStrategy Domain = "strategy"
)

// Valid returns true if the domain is a known value.
func (d Domain) Valid() bool {
	switch d {
	case DomainFinance, DomainEngineering, DomainResearch, DomainLegal,
		DomainMarketing, DomainSecurity, DomainStrategy:
		return true
	default:
		return false
	}
}

// Directorates lists the domains that have a tier-2 director, in the
// fixed priority order the planner uses. Strategy is excluded: it is
// the executive's own domain, not a directorate.
func Directorates() []Domain {
	return []Domain{
		DomainFinance,
		DomainLegal,
		DomainSecurity,
		DomainEngineering,
		DomainResearch,
		DomainMarketing,
	}
}

// Actor is an identity at one tier of the hierarchy. Actors are created
// when a plan is built and are immutable for the life of one run.
type Actor struct {
	// ID is the unique identifier for this actor.
	ID string `json:"id"`
	// Tier is the actor's authority level.
	Tier Tier `json:"tier"`
	// Domain is the business domain the actor operates in.
	Domain Domain `json:"domain"`
}

// CanInvoke reports whether this actor may invoke the other actor.
// Invocation only flows downward one level: the executive invokes
// directors, directors invoke specialists. Everything else is a
// hierarchy violation.
func (a Actor) CanInvoke(other Actor) bool {
	return other.Tier == a.Tier+1
}
