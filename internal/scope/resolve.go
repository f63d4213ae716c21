package scope

import (
	"errors"
	"os"
	"os/user"
	"strings"
)

// OwnerEnvVar names the environment variable consulted when no owner is given.
const OwnerEnvVar = "TMATCH_OWNER"

// ScopeOptions contains options for resolving a scope from CLI/MCP input
//
//nolint:revive // ScopeOptions is intentionally prefixed for clarity in external contexts
type ScopeOptions struct {
	Owner        string
	Organization string
	// DetectOwner falls back to TMATCH_OWNER and then the OS user when Owner is empty.
	DetectOwner bool
}

// ResolveScope converts CLI/MCP-level scope options into a validated Scope.
// An empty organization yields a personal scope.
func ResolveScope(opts ScopeOptions) (Scope, error) {
	owner := strings.TrimSpace(opts.Owner)
	if owner == "" && opts.DetectOwner {
		owner = detectOwner()
	}
	if owner == "" {
		return Scope{}, errors.New("an owner is required (--owner or " + OwnerEnvVar + ")")
	}

	org := strings.TrimSpace(opts.Organization)
	if org == "" {
		s := NewPersonal(owner)
		return s, Validate(s)
	}

	s := NewOrganization(owner, org)
	return s, Validate(s)
}

func detectOwner() string {
	if owner := strings.TrimSpace(os.Getenv(OwnerEnvVar)); owner != "" {
		return owner
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
