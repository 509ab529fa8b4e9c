// Package moderation is the single authority on which role may perform
// which privileged action. It is a pure policy table: stateless, no I/O,
// consulted by every privileged entry point before storage is touched.
package moderation

import (
	"fmt"

	"github.com/impservers/impchat/internal/domain"
	"github.com/impservers/impchat/internal/errors"
)

// Action names a privileged operation.
type Action string

const (
	ActionDeleteMessage Action = "delete_message"
	ActionCreateAccount Action = "create_account"
	ActionUpdateAccount Action = "update_account"
	ActionDeleteAccount Action = "delete_account"
)

// policy maps each action to the roles allowed to perform it. Message
// deletion and account administration belong to the highest tier only.
var policy = map[Action]map[domain.Role]bool{
	ActionDeleteMessage: {domain.RoleLeader: true},
	ActionCreateAccount: {domain.RoleLeader: true},
	ActionUpdateAccount: {domain.RoleLeader: true},
	ActionDeleteAccount: {domain.RoleLeader: true},
}

// Allowed reports whether role may perform action. Unknown actions are
// always denied.
func Allowed(role domain.Role, action Action) bool {
	allowed, ok := policy[action]
	if !ok {
		return false
	}
	return allowed[role]
}

// Authorize is the error-returning form used by service entry points.
func Authorize(role domain.Role, action Action) error {
	if !Allowed(role, action) {
		return errors.NewForbidden(fmt.Sprintf("role %s may not %s", role, action))
	}
	return nil
}
