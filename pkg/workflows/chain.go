package workflows

import (
	"fmt"
	"strings"
)

// Status is a request lifecycle state, e.g. PENDING_MANAGER or APPROVED.
type Status string

// Role identifies the kind of actor a transition is gated on.
type Role string

// Action is a decision taken by a stage actor.
type Action string

const (
	StatusDraft    Status = "DRAFT"
	StatusApproved Status = "APPROVED"
)

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionReturn  Action = "RETURN"

	// Requester actions, validated through CanSubmit/CanEdit rather than the
	// decision table.
	ActionSubmit Action = "SUBMIT"
	ActionEdit   Action = "EDIT"
)

// PendingStatus returns the status of a request waiting on the named stage.
func PendingStatus(stage string) Status { return Status("PENDING_" + stage) }

// ReturnedStatus returns the status of a request sent back by the named stage.
func ReturnedStatus(stage string) Status { return Status("RETURNED_" + stage) }

// RejectedStatus returns the terminal status of a request rejected at the named stage.
func RejectedStatus(stage string) Status { return Status("REJECTED_" + stage) }

// Stage is one role-gated step in a sequential approval chain.
type Stage struct {
	Name string
	Role Role
}

// Transition is the outcome of a legal (status, role, action) triple.
type Transition struct {
	Next            Status
	Record          string // audit action tag appended alongside the status change
	CommentRequired bool
	Terminal        bool
	LocksArtifact   bool // true only on the final stage's APPROVE
}

// UnauthorizedError means the acting role cannot perform the action from the
// current status, but some other role could.
type UnauthorizedError struct {
	Role   Role
	Status Status
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("role %s is not authorized to act on status %s", e.Role, e.Status)
}

// InvalidTransitionError means no role may perform the action from the current
// status. Terminal statuses produce this for every action.
type InvalidTransitionError struct {
	Status Status
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %s is not a legal transition from status %s", e.Action, e.Status)
}

// Chain is a sequential approval chain over an ordered list of stages. The
// transition table built here is the single source of truth for both the
// authorization check and the status change of every decision.
type Chain struct {
	requester Role
	stages    []Stage
	allowDraft bool

	table       map[Status]map[Role]map[Action]Transition
	submittable map[Status]bool
	editable    map[Role]map[Status]bool
}

// Option configures a Chain.
type Option func(*Chain)

// WithDraft enables an unsubmitted DRAFT pre-state ahead of the first stage.
func WithDraft() Option {
	return func(c *Chain) { c.allowDraft = true }
}

// NewChain builds the chain for the given requester role and ordered stages.
func NewChain(requester Role, stages []Stage, opts ...Option) *Chain {
	if len(stages) == 0 {
		panic("workflows: chain requires at least one stage")
	}
	c := &Chain{
		requester:   requester,
		stages:      stages,
		table:       map[Status]map[Role]map[Action]Transition{},
		submittable: map[Status]bool{},
		editable:    map[Role]map[Status]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.build()
	return c
}

func (c *Chain) build() {
	last := len(c.stages) - 1
	for i, st := range c.stages {
		next := StatusApproved
		locks := true
		if i < last {
			next = PendingStatus(c.stages[i+1].Name)
			locks = false
		}

		outcomes := map[Action]Transition{
			ActionApprove: {Next: next, Record: "APPROVED", LocksArtifact: locks},
			ActionReject:  {Next: RejectedStatus(st.Name), Record: "REJECTED", CommentRequired: true, Terminal: true},
			ActionReturn:  {Next: ReturnedStatus(st.Name), Record: "RETURNED_" + st.Name, CommentRequired: true},
		}

		// The stage actor handles its own pending queue and anything the next
		// stage sent back.
		c.addOutcomes(PendingStatus(st.Name), st.Role, outcomes)
		if i < last {
			c.addOutcomes(ReturnedStatus(c.stages[i+1].Name), st.Role, outcomes)
		}

		c.setEditable(st.Role, PendingStatus(st.Name))
		if i < last {
			c.setEditable(st.Role, ReturnedStatus(c.stages[i+1].Name))
		}
	}

	first := c.stages[0]
	c.submittable[PendingStatus(first.Name)] = true
	for _, st := range c.stages {
		c.submittable[ReturnedStatus(st.Name)] = true
	}
	if c.allowDraft {
		c.submittable[StatusDraft] = true
		c.setEditable(c.requester, StatusDraft)
	}
	c.setEditable(c.requester, PendingStatus(first.Name))
	c.setEditable(c.requester, ReturnedStatus(first.Name))
}

func (c *Chain) addOutcomes(status Status, role Role, outcomes map[Action]Transition) {
	byRole, ok := c.table[status]
	if !ok {
		byRole = map[Role]map[Action]Transition{}
		c.table[status] = byRole
	}
	dst := map[Action]Transition{}
	for a, tr := range outcomes {
		dst[a] = tr
	}
	byRole[role] = dst
}

func (c *Chain) setEditable(role Role, status Status) {
	if c.editable[role] == nil {
		c.editable[role] = map[Status]bool{}
	}
	c.editable[role][status] = true
}

// Initial returns the status a newly created request starts in.
func (c *Chain) Initial() Status {
	if c.allowDraft {
		return StatusDraft
	}
	return PendingStatus(c.stages[0].Name)
}

// Decide validates an actor's decision against the current status and returns
// the resulting transition. It never mutates anything.
func (c *Chain) Decide(current Status, role Role, action Action) (Transition, error) {
	byRole, ok := c.table[current]
	if !ok {
		return Transition{}, &InvalidTransitionError{Status: current, Action: action}
	}
	if tr, ok := byRole[role][action]; ok {
		return tr, nil
	}
	for other, actions := range byRole {
		if other == role {
			continue
		}
		if _, can := actions[action]; can {
			return Transition{}, &UnauthorizedError{Role: role, Status: current}
		}
	}
	return Transition{}, &InvalidTransitionError{Status: current, Action: action}
}

// HasStageRole reports whether the role gates any stage of the chain. The
// requester role never does, so it can be rejected before the table is consulted.
func (c *Chain) HasStageRole(role Role) bool {
	for _, st := range c.stages {
		if st.Role == role {
			return true
		}
	}
	return false
}

// StageForRole returns the stage gated on the role.
func (c *Chain) StageForRole(role Role) (Stage, bool) {
	for _, st := range c.stages {
		if st.Role == role {
			return st, true
		}
	}
	return Stage{}, false
}

// CanSubmit reports whether the requester may submit or resubmit from the
// given status. Submission always lands on the first stage's pending queue.
func (c *Chain) CanSubmit(current Status) bool {
	return c.submittable[current]
}

// SubmitTarget is the status a submission transitions to.
func (c *Chain) SubmitTarget() Status {
	return PendingStatus(c.stages[0].Name)
}

// CanEdit reports whether the role may edit the aggregate while it sits in the
// given status. Editing never changes status by itself.
func (c *Chain) CanEdit(current Status, role Role) bool {
	return c.editable[role][current]
}

// Terminal reports whether no further transition is permitted from the status.
func (c *Chain) Terminal(s Status) bool {
	if s == StatusApproved {
		return true
	}
	return strings.HasPrefix(string(s), "REJECTED_")
}

// Statuses lists every status the chain can produce, DRAFT included when enabled.
func (c *Chain) Statuses() []Status {
	out := []Status{}
	if c.allowDraft {
		out = append(out, StatusDraft)
	}
	for _, st := range c.stages {
		out = append(out, PendingStatus(st.Name), ReturnedStatus(st.Name), RejectedStatus(st.Name))
	}
	return append(out, StatusApproved)
}
