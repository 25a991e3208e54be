// Package policy holds the access-control decision functions for tasks.
// Every check is a pure function over already-materialized facts about the
// actor and the task, so decisions can be tested without a database.
package policy

import (
	"task-tracker/internal/models"
)

const (
	ReasonDefaultDenied        = "Permission denied for current user."
	ReasonManagerAssignAdmin   = "Permission denied. Manager can't apply task for administrator"
	ReasonUserAssignOther      = "Permission denied. User can't apply task for other users, managers, and administrators"
	ReasonAccessOwnOnly        = "Permission denied. Users and Managers can only access their own tasks."
	ReasonManagerDeleteOwnOnly = "Managers can only delete tasks they are responsible for or involved in."
	ReasonUserDeleteOwnOnly    = "Users can only delete tasks they are responsible for."
)

// Decision is the outcome of a single policy check. Reason is set only on
// denial and is surfaced verbatim to the caller.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CreateFacts describes a task creation attempt. ShellResponsiblePersonID and
// ActorIsShellExecutor refer to the not-yet-persisted task shell, after any
// responsible-person substitution has been applied. ResponsiblePersonID and
// ResponsiblePersonRole refer to the user the client asked to assign.
type CreateFacts struct {
	ActorID               uint
	ActorRole             models.UserRole
	ResponsiblePersonID   uint
	ResponsiblePersonRole models.UserRole

	ShellResponsiblePersonID uint
	ActorIsShellExecutor     bool
}

// AccessFacts describes a read or update attempt against a persisted task.
type AccessFacts struct {
	ActorRole          models.UserRole
	ActorIsResponsible bool
	ActorIsExecutor    bool
}

// CheckCreate evaluates the creation rules in order; the first match governs.
//
// The first rule can never fire for a freshly built shell (executors are
// always empty and a USER actor's shell already points at the actor), but it
// has a different precondition than the third rule and is kept as its own
// code path.
func CheckCreate(facts CreateFacts) Decision {
	if facts.ActorRole == models.RoleUser &&
		!(facts.ShellResponsiblePersonID == facts.ActorID || facts.ActorIsShellExecutor) {
		return deny(ReasonDefaultDenied)
	}
	if facts.ActorRole == models.RoleManager && facts.ResponsiblePersonRole == models.RoleAdmin {
		return deny(ReasonManagerAssignAdmin)
	}
	if facts.ActorRole == models.RoleUser && facts.ActorID != facts.ResponsiblePersonID {
		return deny(ReasonUserAssignOther)
	}
	return allow()
}

// CheckAccess gates reads and updates. Admins are never restricted; users and
// managers must be the responsible person or an executor of the task.
func CheckAccess(facts AccessFacts) Decision {
	if facts.ActorRole == models.RoleUser || facts.ActorRole == models.RoleManager {
		if !facts.ActorIsResponsible && !facts.ActorIsExecutor {
			return deny(ReasonAccessOwnOnly)
		}
	}
	return allow()
}

// CheckDelete gates deletion. Deletion is stricter than access for plain
// users: executor membership grants read/update but not delete.
func CheckDelete(facts AccessFacts) Decision {
	switch facts.ActorRole {
	case models.RoleManager:
		if !facts.ActorIsResponsible && !facts.ActorIsExecutor {
			return deny(ReasonManagerDeleteOwnOnly)
		}
	case models.RoleUser:
		if !facts.ActorIsResponsible {
			return deny(ReasonUserDeleteOwnOnly)
		}
	}
	return allow()
}
