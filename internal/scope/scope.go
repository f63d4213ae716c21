package scope

import (
	"errors"
	"fmt"
	"strings"
)

type ScopeType string

const (
	ScopePersonal     ScopeType = "personal"
	ScopeOrganization ScopeType = "organization"
)

// Scope is the visibility boundary of a translation memory request: an owner,
// optionally extended to one organization.
type Scope struct {
	Type           ScopeType
	OwnerID        string
	OrganizationID string
}

func NewPersonal(ownerID string) Scope {
	return Scope{Type: ScopePersonal, OwnerID: ownerID}
}

func NewOrganization(ownerID, organizationID string) Scope {
	return Scope{Type: ScopeOrganization, OwnerID: ownerID, OrganizationID: organizationID}
}

func IsOrganization(s Scope) bool { return s.Type == ScopeOrganization }

// Organization returns the organization id and true for organization scopes.
func (s Scope) Organization() (string, bool) {
	if !IsOrganization(s) {
		return "", false
	}
	return s.OrganizationID, true
}

func Validate(s Scope) error {
	switch s.Type {
	case ScopePersonal:
		if err := ensureNonEmpty("Personal scope requires an owner id", s.OwnerID); err != nil {
			return err
		}
		if s.OrganizationID != "" {
			return errors.New("Personal scope cannot carry an organization id")
		}
		return nil
	case ScopeOrganization:
		if err := ensureNonEmpty("Organization scope requires an owner id", s.OwnerID); err != nil {
			return err
		}
		if err := ensureNonEmpty("Organization scope requires an organization id", s.OrganizationID); err != nil {
			return err
		}
		return nil
	default:
		return fmt.Errorf("invalid scope type: %s", s.Type)
	}
}

// FormatScope renders s as "owner" or "owner@organization".
func FormatScope(s Scope) string {
	switch s.Type {
	case ScopePersonal:
		return s.OwnerID
	case ScopeOrganization:
		return s.OwnerID + "@" + s.OrganizationID
	default:
		return ""
	}
}

func ensureNonEmpty(msg, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(msg)
	}
	return nil
}
