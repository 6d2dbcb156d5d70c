package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// HasRolePath is the RPC endpoint on the hosted backend
const HasRolePath = "/rest/v1/rpc/has_role"

// maxResponseBytes caps how much of a role response is read
const maxResponseBytes = 4 << 10

type hasRoleRequest struct {
	UserID string `json:"_user_id"`
	Role   string `json:"_role"`
}

// RemoteRoleChecker calls the backend's has_role RPC.
// Concurrent lookups for the same user and role share one request.
type RemoteRoleChecker struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	group      singleflight.Group
}

// NewRemoteRoleChecker creates a checker for the backend at baseURL
func NewRemoteRoleChecker(baseURL, apiKey string, client *http.Client, logger *slog.Logger) *RemoteRoleChecker {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteRoleChecker{
		endpoint:   strings.TrimRight(baseURL, "/") + HasRolePath,
		apiKey:     apiKey,
		httpClient: client,
		logger:     logger.With(slog.String("component", "role_checker")),
	}
}

// HasRole implements RoleChecker.
// The shared request ignores the first caller's cancellation and is bounded by
// the HTTP client timeout. Each caller still stops waiting when its own ctx ends.
func (c *RemoteRoleChecker) HasRole(ctx context.Context, userID, role string) (bool, error) {
	ch := c.group.DoChan(userID+"\x00"+role, func() (interface{}, error) {
		return c.call(context.WithoutCancel(ctx), userID, role)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %w", ErrLookupFailed, ctx.Err())
	}

	if res.Err != nil {
		c.logger.WarnContext(ctx, "role lookup failed",
			slog.String("user_id", userID),
			slog.String("role", role),
			slog.String("error", res.Err.Error()))
		return false, res.Err
	}
	granted := res.Val.(bool)
	c.logger.DebugContext(ctx, "role lookup",
		slog.String("user_id", userID),
		slog.String("role", role),
		slog.Bool("granted", granted),
		slog.Bool("shared", res.Shared))
	return granted, nil
}

func (c *RemoteRoleChecker) call(ctx context.Context, userID, role string) (bool, error) {
	payload, err := json.Marshal(hasRoleRequest{UserID: userID, Role: role})
	if err != nil {
		return false, fmt.Errorf("%w: failed to marshal request: %w", ErrLookupFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("%w: failed to create request: %w", ErrLookupFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: request failed: %w", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("%w: failed to read response: %w", ErrLookupFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: backend returned status %d: %s", ErrLookupFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var granted bool
	if err := json.Unmarshal(body, &granted); err != nil {
		return false, fmt.Errorf("%w: failed to parse response: %w", ErrLookupFailed, err)
	}
	return granted, nil
}
