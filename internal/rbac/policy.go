package rbac

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type policyFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPolicy reads a YAML role table:
//
//	roles:
//	  dispatcher: [access-dashboard, access-batches]
//
// Unknown capability tags are rejected.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rbac policy %s: %w", path, err)
	}
	return ParsePolicy(data)
}

func ParsePolicy(data []byte) (Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rbac policy: %w", err)
	}
	if len(f.Roles) == 0 {
		return nil, fmt.Errorf("rbac policy defines no roles")
	}

	policy := make(Policy, len(f.Roles))
	for role, perms := range f.Roles {
		if strings.TrimSpace(role) == "" {
			return nil, fmt.Errorf("rbac policy contains an empty role name")
		}
		// role claims are compared exactly, so padded names could never match
		if strings.TrimSpace(role) != role {
			return nil, fmt.Errorf("role %q has leading or trailing whitespace", role)
		}
		for _, p := range perms {
			if !IsKnownPermission(p) {
				return nil, fmt.Errorf("role %q: unknown permission %q", role, p)
			}
		}
		policy[role] = append([]string(nil), perms...)
	}
	return policy, nil
}
