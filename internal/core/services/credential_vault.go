package services

import (
	"fmt"

	"libris/internal/config"
	"libris/internal/core/domain"
)

// CredentialVault maps each role to the database principal it connects
// as. It is filled once at startup and only read afterwards.
type CredentialVault struct {
	creds map[domain.Role]domain.DatabaseCredential
}

// NewCredentialVault copies creds into a vault. Every known role must be
// mapped, so a lookup for a role the resolver can return never misses.
func NewCredentialVault(creds config.RoleCredentials) (*CredentialVault, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("credential vault: %w", err)
	}

	copied := make(map[domain.Role]domain.DatabaseCredential, len(creds))
	for role, cred := range creds {
		if role.Valid() {
			copied[role] = cred
		}
	}
	return &CredentialVault{creds: copied}, nil
}

// Lookup returns the credential for role or ErrNoCredentialMapping
func (v *CredentialVault) Lookup(role domain.Role) (domain.DatabaseCredential, error) {
	cred, ok := v.creds[role]
	if !ok || cred.Principal == "" {
		return domain.DatabaseCredential{}, domain.ErrNoCredentialMapping
	}
	return cred, nil
}

// Principals lists the configured principal per role code
func (v *CredentialVault) Principals() map[string]string {
	out := make(map[string]string, len(v.creds))
	for role, cred := range v.creds {
		out[role.Code()] = cred.Principal
	}
	return out
}
