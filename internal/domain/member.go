package domain

import (
	"errors"
	"time"
)

// Plan subscription tier of a member
type Plan string

const (
	PlanStandard       Plan = "STANDARD"
	PlanPremium        Plan = "PREMIUM"
	PlanDigitalPrepaid Plan = "DIGITAL_PREPAID"
)

// ErrMainTrainerNotAllowed is returned when a main trainer is set on a plan that does not support it
var ErrMainTrainerNotAllowed = errors.New("domain: main trainer is not allowed for this plan")

// ErrNegativeBalance is returned when a prepaid balance would go below zero
var ErrNegativeBalance = errors.New("domain: prepaid balance must not be negative")

// PlanPolicy booking rules derived from a plan
type PlanPolicy struct {
	Plan              Plan
	LimitDays         int  // how many days ahead a member may book
	Prepaid           bool // bookings are debited from the prepaid balance
	AllowsMainTrainer bool
}

var planPolicies = map[Plan]PlanPolicy{
	PlanStandard:       {Plan: PlanStandard, LimitDays: 14, AllowsMainTrainer: true},
	PlanPremium:        {Plan: PlanPremium, LimitDays: 30, AllowsMainTrainer: true},
	PlanDigitalPrepaid: {Plan: PlanDigitalPrepaid, LimitDays: 14, Prepaid: true},
}

// PolicyFor returns the policy of a plan. Unknown plans fall back to STANDARD.
// limitOverrides (plan -> days) replaces the built-in lookahead when present.
func PolicyFor(plan Plan, limitOverrides map[string]int) PlanPolicy {
	policy, ok := planPolicies[plan]
	if !ok {
		policy = planPolicies[PlanStandard]
	}
	if days, ok := limitOverrides[string(policy.Plan)]; ok {
		policy.LimitDays = days
	}
	return policy
}

// Member represents a studio member
type Member struct {
	ID                 int64
	Name               string
	Plan               Plan
	ContractedSessions int   // monthly quota
	PrepaidBalance     int64 // yen, meaningful for prepaid plans only
	MainTrainerID      *int64
	LineUserID         *string
	JoinDate           *time.Time
	BirthDate          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasLineID returns true if the member can receive LINE messages
func (m *Member) HasLineID() bool {
	return m.LineUserID != nil && *m.LineUserID != ""
}

// Validate checks member invariants
func (m *Member) Validate() error {
	if m.PrepaidBalance < 0 {
		return ErrNegativeBalance
	}
	if m.MainTrainerID != nil && !PolicyFor(m.Plan, nil).AllowsMainTrainer {
		return ErrMainTrainerNotAllowed
	}
	return nil
}
