// Package permission holds the authorization predicates evaluated before
// mutating teams, memberships, tasks, labels and statuses.
package permission

import "github.com/chepyr/team-tracker/internal/apperr"

// Denial reasons.
const (
	NotSelf        = "not_self"
	NotAdmin       = "not_admin"
	SelfRoleChange = "self_role_change"
	NotAuthor      = "not_author"
	NotParticipant = "not_participant"
	AdminExit      = "admin_exit"
	RemoveAdmin    = "remove_admin"
	HasTasks       = "has_tasks"
	LabelInUse     = "label_in_use"
	StatusInUse    = "status_in_use"
)

var messages = map[string]string{
	NotSelf:        "You can only change your own profile",
	NotAdmin:       "Only team admins can do this",
	SelfRoleChange: "You cannot change your own role",
	NotAuthor:      "Only the task author can delete it",
	NotParticipant: "Only the task author or an executor can change it",
	AdminExit:      "Admins cannot leave their team",
	RemoveAdmin:    "Admins cannot be removed from the team",
	HasTasks:       "The user is an author or executor of tasks in this team",
	LabelInUse:     "The label is used by a task and cannot be deleted",
	StatusInUse:    "The status is used by a task and cannot be deleted",
}

// Decision is the outcome of a predicate. A denied decision carries the
// error kind the caller should report and a reason code with a message.
type Decision struct {
	Allowed bool
	Kind    apperr.Kind
	Reason  string
	Message string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(kind apperr.Kind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason, Message: messages[reason]}
}

func notFound(entity string) Decision {
	e := apperr.NotFoundf(entity)
	return Decision{Kind: apperr.NotFound, Reason: e.Code, Message: e.Message}
}

// Err converts a denial into an *apperr.Error. It returns nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &apperr.Error{Kind: d.Kind, Code: d.Reason, Message: d.Message}
}
