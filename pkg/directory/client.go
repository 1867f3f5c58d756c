package directory

import (
	"errors"
	"time"
)

// ErrExists reports that the object being created is already present.
// Both implementations normalize their duplicate-rejection errors to this so
// callers can treat re-runs as no-ops instead of failures.
var ErrExists = errors.New("directory object already exists")

// Account is a directory principal as seen by the remediations.
type Account struct {
	DN             string
	SAMAccountName string
	IsUser         bool // user objects get the password-expiry treatment
}

// PasswordSettings describes a fine-grained password settings object (PSO)
// and the group it applies to.
type PasswordSettings struct {
	Name              string
	MaxPasswordAge    time.Duration
	MinPasswordAge    time.Duration
	MinPasswordLength int
	HistoryLength     int
	Precedence        int
	LockoutThreshold  int
	LockoutDuration   time.Duration
	LockoutWindow     time.Duration
	AppliesToGroup    string
}

// Client is the narrow directory surface the remediations need. The LDAP
// implementation talks to a domain controller; the memory implementation
// backs tests and dry runs.
type Client interface {
	// Domain attributes.
	MachineAccountQuota() (int, error)
	SetMachineAccountQuota(n int) error

	// Replication subnets.
	FirstSiteName() (string, error)
	SubnetExists(cidr string) (bool, error)
	CreateSubnet(cidr, site string) error

	// Groups and membership.
	GroupExists(name string) (bool, error)
	CreateGroup(name, description string) error
	AddGroupMember(group, memberDN string) error

	// Principals.
	FindAccount(samAccountName string) (Account, bool, error)
	AdministratorAccount() (Account, error)
	ClearPasswordNeverExpires(dn string) error

	// Fine-grained password policies.
	CreatePasswordSettings(ps PasswordSettings) error
}
