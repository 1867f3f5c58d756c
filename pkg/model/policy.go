package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// WellKnownAdministratorKeyword marks a member entry that must resolve to the
// domain's built-in administrator account (RID 500) at run time, whatever that
// account is currently named.
const WellKnownAdministratorKeyword = "builtin-administrator"

// MemberRef identifies a principal to be added to a policy group. Exactly one
// form is set: the well-known administrator variant, or an explicit account
// name. The variant is fixed at document decode time; resolution against the
// live directory happens once per definition before any membership write.
type MemberRef struct {
	WellKnownAdministrator bool
	Name                   string
}

func (m *MemberRef) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return fmt.Errorf("empty member entry")
	}
	if s == WellKnownAdministratorKeyword {
		m.WellKnownAdministrator = true
		return nil
	}
	m.Name = s
	return nil
}

func (m MemberRef) String() string {
	if m.WellKnownAdministrator {
		return WellKnownAdministratorKeyword
	}
	return m.Name
}

// PolicyDefinition describes one fine-grained password policy and the group it
// applies to. Definitions are processed in document order; Precedence only
// affects effective-policy resolution inside the directory.
type PolicyDefinition struct {
	Name               string      `yaml:"name" json:"name"`
	MaxPasswordAgeDays int         `yaml:"maxPasswordAgeDays" json:"maxPasswordAgeDays"`
	MinPasswordLength  int         `yaml:"minPasswordLength" json:"minPasswordLength"`
	Precedence         int         `yaml:"precedence" json:"precedence"`
	Members            []MemberRef `yaml:"members" json:"members,omitempty"`
}

// Validate returns true if the definition carries everything the directory
// requires for a password settings object.
func (p PolicyDefinition) Validate() bool {
	return p.Name != "" && p.MaxPasswordAgeDays > 0 && p.MinPasswordLength > 0 && p.Precedence > 0
}
