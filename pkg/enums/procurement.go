package enums

import "fmt"

// ProcurementStatus tracks the restock request lifecycle.
type ProcurementStatus string

const (
	ProcurementStatusRequested          ProcurementStatus = "Requested"
	ProcurementStatusConfirmed          ProcurementStatus = "Confirmed"
	ProcurementStatusWaitingForApproval ProcurementStatus = "Waiting for Approval"
	ProcurementStatusApproved           ProcurementStatus = "Approved"
	ProcurementStatusPicked             ProcurementStatus = "Picked"
	ProcurementStatusReceived           ProcurementStatus = "Received"
	ProcurementStatusRejected           ProcurementStatus = "Rejected"
)

var validProcurementStatuses = []ProcurementStatus{
	ProcurementStatusRequested,
	ProcurementStatusConfirmed,
	ProcurementStatusWaitingForApproval,
	ProcurementStatusApproved,
	ProcurementStatusPicked,
	ProcurementStatusReceived,
	ProcurementStatusRejected,
}

// procurementTransitions is the explicit transition table. Rejected is
// absorbing; Received is terminal. Moving back to Requested re-queues the
// request for driver assignment.
var procurementTransitions = map[ProcurementStatus][]ProcurementStatus{
	ProcurementStatusRequested:          {ProcurementStatusConfirmed, ProcurementStatusRejected},
	ProcurementStatusConfirmed:          {ProcurementStatusWaitingForApproval, ProcurementStatusRequested, ProcurementStatusRejected},
	ProcurementStatusWaitingForApproval: {ProcurementStatusApproved, ProcurementStatusRequested, ProcurementStatusRejected},
	ProcurementStatusApproved:           {ProcurementStatusPicked, ProcurementStatusRejected},
	ProcurementStatusPicked:             {ProcurementStatusReceived, ProcurementStatusRejected},
	ProcurementStatusReceived:           {},
	ProcurementStatusRejected:           {},
}

// String implements fmt.Stringer.
func (p ProcurementStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProcurementStatus.
func (p ProcurementStatus) IsValid() bool {
	for _, candidate := range validProcurementStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProcurementStatus converts raw input into a ProcurementStatus.
func ParseProcurementStatus(value string) (ProcurementStatus, error) {
	for _, candidate := range validProcurementStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid procurement status %q", value)
}

// CanTransitionProcurement reports whether from -> to is legal.
func CanTransitionProcurement(from, to ProcurementStatus) bool {
	if from == to {
		return true
	}
	for _, candidate := range procurementTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ProcurementType identifies who raised a restock request.
type ProcurementType string

const (
	ProcurementTypeVendor ProcurementType = "vendor"
	ProcurementTypeAdmin  ProcurementType = "admin"
	ProcurementTypeFarmer ProcurementType = "farmer"
)

var validProcurementTypes = []ProcurementType{
	ProcurementTypeVendor,
	ProcurementTypeAdmin,
	ProcurementTypeFarmer,
}

// IsValid reports whether the value is a known ProcurementType.
func (p ProcurementType) IsValid() bool {
	for _, candidate := range validProcurementTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProcurementType converts raw input into a ProcurementType.
func ParseProcurementType(value string) (ProcurementType, error) {
	for _, candidate := range validProcurementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid procurement type %q", value)
}

// NegotiationParty identifies which side changed a procurement price.
type NegotiationParty string

const (
	NegotiationPartyVendor NegotiationParty = "vendor"
	NegotiationPartyAdmin  NegotiationParty = "admin"
)
