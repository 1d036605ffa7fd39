package services

import (
	"fmt"

	"github.com/printforge/erp/pkg/domain/entities"
)

// TransitionError reports a state change rejected by the active policy
type TransitionError struct {
	From entities.FulfillmentState
	To   entities.FulfillmentState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s is not allowed by the active policy", e.From, e.To)
}

// TransitionPolicy decides which fulfillment state changes are legal. The
// table makes the workflow's permissiveness an explicit, reviewable policy
// instead of an implicit property of the call path.
type TransitionPolicy struct {
	permitAll bool
	allowed   map[entities.FulfillmentState][]entities.FulfillmentState
}

// NewPermissivePolicy returns the shipped policy: any state may be assigned
// from any state. Staff use backwards jumps (e.g. Finished -> Draft) as a
// manual override, so the permissive table is the production default.
func NewPermissivePolicy() *TransitionPolicy {
	return &TransitionPolicy{permitAll: true}
}

// NewStrictPolicy returns a forward-only table for deployments that want the
// workflow locked down: each state may only advance along the fulfillment
// sequence or be cancelled.
func NewStrictPolicy() *TransitionPolicy {
	return &TransitionPolicy{
		allowed: map[entities.FulfillmentState][]entities.FulfillmentState{
			entities.Draft:      {entities.Confirmed, entities.Cancelled},
			entities.Confirmed:  {entities.Invoiced, entities.Pending, entities.Cancelled},
			entities.Invoiced:   {entities.Pending, entities.Cancelled},
			entities.Pending:    {entities.Design, entities.Nesting, entities.Production, entities.Cancelled},
			entities.Design:     {entities.Nesting, entities.Production, entities.Cancelled},
			entities.Nesting:    {entities.Production, entities.Cancelled},
			entities.Production: {entities.Finished, entities.Cancelled},
			entities.Finished:   {entities.Delivered},
			entities.Delivered:  {},
			entities.Cancelled:  {},
		},
	}
}

// Allowed reports whether the policy permits moving from one state to
// another. A transition to the current state is never routed here; the state
// machines treat it as a no-op before consulting the policy.
func (p *TransitionPolicy) Allowed(from, to entities.FulfillmentState) bool {
	if p.permitAll {
		return true
	}
	for _, candidate := range p.allowed[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Check returns a TransitionError when the policy rejects the change
func (p *TransitionPolicy) Check(from, to entities.FulfillmentState) error {
	if !p.Allowed(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
