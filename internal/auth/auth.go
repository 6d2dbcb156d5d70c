// Package auth answers "does user U hold role R" for the HTTP layer.
//
// Authentication itself belongs to the hosted backend; this package only
// performs role lookups, either against a static table from configuration or
// through the backend's has_role RPC.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"herdbook/internal/config"
)

// ErrLookupFailed wraps failures talking to the role backend
var ErrLookupFailed = errors.New("role lookup failed")

// RoleChecker reports whether a user holds a role
type RoleChecker interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// StaticRoleChecker answers from a fixed role to users table
type StaticRoleChecker struct {
	roles map[string]map[string]struct{}
}

// NewStaticRoleChecker builds a checker from role -> user ids
func NewStaticRoleChecker(assignments map[string][]string) *StaticRoleChecker {
	roles := make(map[string]map[string]struct{}, len(assignments))
	for role, users := range assignments {
		set := make(map[string]struct{}, len(users))
		for _, u := range users {
			set[u] = struct{}{}
		}
		roles[role] = set
	}
	return &StaticRoleChecker{roles: roles}
}

// HasRole implements RoleChecker
func (c *StaticRoleChecker) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := c.roles[role][userID]
	return ok, nil
}

// NewFromConfig picks the checker configured in cfg.Auth.
// It returns nil when role checking is disabled.
func NewFromConfig(cfg *config.Config, client *http.Client, logger *slog.Logger) (RoleChecker, error) {
	if !cfg.Auth.Enabled {
		return nil, nil
	}

	switch cfg.Auth.Mode {
	case "static":
		return NewStaticRoleChecker(cfg.StaticRoleAssignments()), nil
	case "remote":
		if client == nil {
			client = &http.Client{Timeout: cfg.Auth.Timeout}
		}
		return NewRemoteRoleChecker(cfg.Auth.BaseURL, cfg.Auth.APIKey, client, logger), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}
