package config

import (
	"fmt"
	"os"
	"strings"

	"libris/internal/core/domain"

	"gopkg.in/yaml.v2"
)

// RoleCredentials maps every role to the database principal it connects as
type RoleCredentials map[domain.Role]domain.DatabaseCredential

// defaultPrincipals are the database users provisioned for each role
var defaultPrincipals = map[domain.Role]string{
	domain.RoleSysAdmin:         "user_sysadmin",
	domain.RoleDirector:         "user_director",
	domain.RoleITSupport:        "user_itsupport",
	domain.RoleCataloger:        "user_cataloger",
	domain.RoleCirculationClerk: "user_clerk",
	domain.RolePatron:           "patron",
}

// roleCredentialFile is the YAML layout of ROLE_CREDENTIALS_FILE
//
//	roles:
//	  ROLE_CIRCULATION_CLERK:
//	    principal: user_clerk
//	    secret: ClerkPass123
type roleCredentialFile struct {
	Roles map[string]struct {
		Principal string `yaml:"principal"`
		Secret    string `yaml:"secret"`
	} `yaml:"roles"`
}

// LoadRoleCredentials builds the role table from the environment, then
// applies the optional YAML file on top. Every known role must end up
// with a principal.
func LoadRoleCredentials(path string) (RoleCredentials, error) {
	creds := make(RoleCredentials, len(defaultPrincipals))
	for _, role := range domain.AllRoles() {
		key := envKey(role)
		creds[role] = domain.DatabaseCredential{
			Principal: getEnv("DB_ROLE_"+key+"_USER", defaultPrincipals[role]),
			Secret:    getEnv("DB_ROLE_"+key+"_PASS", ""),
		}
	}

	if path != "" {
		if err := applyCredentialFile(creds, path); err != nil {
			return nil, err
		}
	}

	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

func applyCredentialFile(creds RoleCredentials, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read role credentials file: %w", err)
	}

	var file roleCredentialFile
	if err := yaml.UnmarshalStrict(raw, &file); err != nil {
		return fmt.Errorf("failed to parse role credentials file: %w", err)
	}

	for code, entry := range file.Roles {
		role, ok := domain.ParseRole(code)
		if !ok {
			return fmt.Errorf("role credentials file: unknown role %q", code)
		}
		current := creds[role]
		if entry.Principal != "" {
			current.Principal = entry.Principal
		}
		if entry.Secret != "" {
			current.Secret = entry.Secret
		}
		creds[role] = current
	}
	return nil
}

// Validate fails when any known role lacks a principal
func (rc RoleCredentials) Validate() error {
	var missing []string
	for _, role := range domain.AllRoles() {
		if rc[role].Principal == "" {
			missing = append(missing, role.Code())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no database principal configured for: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MissingSecrets lists roles whose secret is empty
func (rc RoleCredentials) MissingSecrets() []string {
	var missing []string
	for _, role := range domain.AllRoles() {
		if rc[role].Secret == "" {
			missing = append(missing, role.Code())
		}
	}
	return missing
}

// envKey turns ROLE_CIRCULATION_CLERK into CIRCULATION_CLERK
func envKey(role domain.Role) string {
	return strings.TrimPrefix(role.Code(), "ROLE_")
}
