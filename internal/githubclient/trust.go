package githubclient

import (
	"context"
	"log/slog"
)

// IsTrustedUser reports whether username holds write, maintain or admin
// permission on the repository. Lookup failures fail closed: the user is
// treated as untrusted.
func IsTrustedUser(ctx context.Context, c Client, username string) bool {
	perm, err := c.PermissionLevel(ctx, username)
	if err != nil {
		slog.WarnContext(ctx, "permission lookup failed, treating user as untrusted", "user", username, "error", err)
		return false
	}
	switch perm {
	case PermissionWrite, PermissionMaintain, PermissionAdmin:
		return true
	}
	return false
}
