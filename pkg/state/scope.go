package state

import (
	"fmt"
	"strings"
)

// ScopeLevel groups baselines by ownership.
type ScopeLevel int

const (
	ScopeLevelUnknown ScopeLevel = iota
	ScopeLevelSystem
	ScopeLevelTenant
	ScopeLevelOrg
	ScopeLevelTeam
	ScopeLevelUser
)

func (l ScopeLevel) String() string {
	switch l {
	case ScopeLevelSystem:
		return "system"
	case ScopeLevelTenant:
		return "tenant"
	case ScopeLevelOrg:
		return "org"
	case ScopeLevelTeam:
		return "team"
	case ScopeLevelUser:
		return "user"
	default:
		return "unknown"
	}
}

// ParseScopeLevel converts a level name, case-insensitively. Unknown names
// yield ScopeLevelUnknown.
func ParseScopeLevel(value string) ScopeLevel {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "system":
		return ScopeLevelSystem
	case "tenant":
		return ScopeLevelTenant
	case "org":
		return ScopeLevelOrg
	case "team":
		return ScopeLevelTeam
	case "user":
		return ScopeLevelUser
	default:
		return ScopeLevelUnknown
	}
}

// Scope names the owner of a baseline. ID is required for every level but
// system.
type Scope struct {
	Level ScopeLevel
	ID    string
}

// Ref identifies one baseline.
type Ref struct {
	Domain   string
	Document string
	Scope    Scope
}

// Identifier returns the canonical storage key for r.
func (r Ref) Identifier() (string, error) {
	domain := strings.TrimSpace(r.Domain)
	if domain == "" {
		return "", fmt.Errorf("state: domain is required")
	}
	document := strings.TrimSpace(r.Document)
	if document == "" {
		return "", fmt.Errorf("state: document is required")
	}
	switch r.Scope.Level {
	case ScopeLevelSystem:
		return fmt.Sprintf("system/%s/%s", domain, document), nil
	case ScopeLevelTenant, ScopeLevelOrg, ScopeLevelTeam, ScopeLevelUser:
		id := strings.TrimSpace(r.Scope.ID)
		if id == "" {
			return "", fmt.Errorf("state: missing id for scope %q", r.Scope.Level)
		}
		return fmt.Sprintf("%s/%s/%s/%s", r.Scope.Level, id, domain, document), nil
	default:
		return "", fmt.Errorf("state: unsupported scope %q", r.Scope.Level)
	}
}

// String renders r for logs; invalid refs render their error.
func (r Ref) String() string {
	id, err := r.Identifier()
	if err != nil {
		return err.Error()
	}
	return id
}
