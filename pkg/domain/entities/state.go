package entities

import (
	"encoding/json"
	"fmt"
)

// FulfillmentState represents the fulfillment state of a sales order or
// production task
type FulfillmentState int

const (
	Draft FulfillmentState = iota
	Confirmed
	Invoiced
	Pending
	Design
	Nesting
	Production
	Finished
	Delivered
	Cancelled
)

// String method for FulfillmentState enum
func (s FulfillmentState) String() string {
	switch s {
	case Draft:
		return "Draft"
	case Confirmed:
		return "Confirmed"
	case Invoiced:
		return "Invoiced"
	case Pending:
		return "Pending"
	case Design:
		return "Design"
	case Nesting:
		return "Nesting"
	case Production:
		return "Production"
	case Finished:
		return "Finished"
	case Delivered:
		return "Delivered"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// ParseFulfillmentState converts a state name into a FulfillmentState
func ParseFulfillmentState(name string) (FulfillmentState, error) {
	switch name {
	case "Draft":
		return Draft, nil
	case "Confirmed":
		return Confirmed, nil
	case "Invoiced":
		return Invoiced, nil
	case "Pending":
		return Pending, nil
	case "Design":
		return Design, nil
	case "Nesting", "Pre-Press":
		return Nesting, nil
	case "Production":
		return Production, nil
	case "Finished":
		return Finished, nil
	case "Delivered":
		return Delivered, nil
	case "Cancelled":
		return Cancelled, nil
	default:
		return Draft, fmt.Errorf("unknown fulfillment state: %q", name)
	}
}

// MarshalJSON encodes the state by name
func (s FulfillmentState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name
func (s *FulfillmentState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	state, err := ParseFulfillmentState(name)
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// InProduction reports whether the state counts as production work having
// started for cascade purposes.
func (s FulfillmentState) InProduction() bool {
	return s == Production || s == Finished
}
