// Package workflow holds the status machines of every approvable entity.
// A Machine only answers two questions: may this actor fire this event, and
// which status does the event lead to from the current one.
package workflow

import (
	"slices"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
)

// Event is a named status change request.
type Event string

const (
	EventApprove    Event = "approve"
	EventReject     Event = "reject"
	EventComplete   Event = "complete"
	EventWithdraw   Event = "withdraw"
	EventActivate   Event = "activate"
	EventTerminate  Event = "terminate"
	EventExpire     Event = "expire"
	EventClaim      Event = "claim"
	EventHold       Event = "hold"
	EventReactivate Event = "reactivate"
)

// Transition moves an entity from any of From to To, guarded by Action.
type Transition[S ~string] struct {
	From   []S
	To     S
	Action rbac.Action
}

// Machine is the transition table of a single entity kind.
type Machine[S ~string] struct {
	Entity      string
	Initial     S
	Transitions map[Event]Transition[S]
}

// Authorize checks the role gate for event. Unknown events are rejected as invalid input.
func (m Machine[S]) Authorize(actor rbac.Actor, event Event) error {
	t, ok := m.Transitions[event]
	if !ok {
		return apperr.Validation("unknown %s event %q", m.Entity, event)
	}
	return rbac.Authorize(actor, t.Action)
}

// Next returns the status reached by firing event from current.
func (m Machine[S]) Next(current S, event Event) (S, error) {
	t, ok := m.Transitions[event]
	if !ok {
		return current, apperr.Validation("unknown %s event %q", m.Entity, event)
	}
	if !slices.Contains(t.From, current) {
		return current, apperr.Conflict("cannot %s %s in status %q", event, m.Entity, current)
	}
	return t.To, nil
}

// CanFire reports whether event is legal from current, ignoring roles.
func (m Machine[S]) CanFire(current S, event Event) bool {
	_, err := m.Next(current, event)
	return err == nil
}

// Terminal reports whether no event leaves status s.
func (m Machine[S]) Terminal(s S) bool {
	for _, t := range m.Transitions {
		if slices.Contains(t.From, s) {
			return false
		}
	}
	return true
}

// Applications are reviewed only while pending. Staff may complete one directly from pending.
var Applications = Machine[model.ApplicationStatus]{
	Entity:  "application",
	Initial: model.ApplicationPending,
	Transitions: map[Event]Transition[model.ApplicationStatus]{
		EventApprove: {
			From:   []model.ApplicationStatus{model.ApplicationPending},
			To:     model.ApplicationApproved,
			Action: rbac.ApplicationApprove,
		},
		EventReject: {
			From:   []model.ApplicationStatus{model.ApplicationPending},
			To:     model.ApplicationRejected,
			Action: rbac.ApplicationReject,
		},
		EventComplete: {
			From:   []model.ApplicationStatus{model.ApplicationPending, model.ApplicationApproved},
			To:     model.ApplicationCompleted,
			Action: rbac.ApplicationComplete,
		},
		EventWithdraw: {
			From:   []model.ApplicationStatus{model.ApplicationPending, model.ApplicationApproved},
			To:     model.ApplicationWithdrawn,
			Action: rbac.ApplicationWithdraw,
		},
	},
}

var Payments = Machine[model.PaymentStatus]{
	Entity:  "payment",
	Initial: model.PaymentPending,
	Transitions: map[Event]Transition[model.PaymentStatus]{
		EventApprove: {
			From:   []model.PaymentStatus{model.PaymentPending},
			To:     model.PaymentApproved,
			Action: rbac.PaymentApprove,
		},
		EventReject: {
			From:   []model.PaymentStatus{model.PaymentPending},
			To:     model.PaymentRejected,
			Action: rbac.PaymentReject,
		},
		EventComplete: {
			From:   []model.PaymentStatus{model.PaymentApproved},
			To:     model.PaymentCompleted,
			Action: rbac.PaymentComplete,
		},
	},
}

var Contracts = Machine[model.ContractStatus]{
	Entity:  "contract",
	Initial: model.ContractDraft,
	Transitions: map[Event]Transition[model.ContractStatus]{
		EventActivate: {
			From:   []model.ContractStatus{model.ContractDraft},
			To:     model.ContractActive,
			Action: rbac.ContractActivate,
		},
		EventComplete: {
			From:   []model.ContractStatus{model.ContractActive},
			To:     model.ContractCompleted,
			Action: rbac.ContractComplete,
		},
		EventTerminate: {
			From:   []model.ContractStatus{model.ContractDraft, model.ContractActive},
			To:     model.ContractTerminated,
			Action: rbac.ContractTerminate,
		},
	},
}

// Warranties: claimed is final, an expired warranty can still be reactivated.
var Warranties = Machine[model.WarrantyStatus]{
	Entity:  "warranty",
	Initial: model.WarrantyActive,
	Transitions: map[Event]Transition[model.WarrantyStatus]{
		EventExpire: {
			From:   []model.WarrantyStatus{model.WarrantyActive, model.WarrantyPending},
			To:     model.WarrantyExpired,
			Action: rbac.WarrantyExpire,
		},
		EventClaim: {
			From:   []model.WarrantyStatus{model.WarrantyActive, model.WarrantyPending},
			To:     model.WarrantyClaimed,
			Action: rbac.WarrantyClaim,
		},
		EventHold: {
			From:   []model.WarrantyStatus{model.WarrantyActive},
			To:     model.WarrantyPending,
			Action: rbac.WarrantyUpdate,
		},
		EventReactivate: {
			From:   []model.WarrantyStatus{model.WarrantyPending, model.WarrantyExpired},
			To:     model.WarrantyActive,
			Action: rbac.WarrantyUpdate,
		},
	},
}
