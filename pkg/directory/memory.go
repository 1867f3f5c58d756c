package directory

import (
	"fmt"
	"sync"
)

// MemoryDirectory is an in-memory Client, intended for dry runs and tests.
// The Fail* knobs force specific operations to error; QuotaReadback overrides
// what a verification read returns after a successful write.
type MemoryDirectory struct {
	mu sync.RWMutex

	Quota         int
	QuotaWrites   int
	QuotaReadback *int

	Sites   []string
	Subnets map[string]string // cidr -> site

	Groups  map[string][]string // group name -> member DNs
	PSOs    map[string]PasswordSettings
	Account map[string]Account // sAMAccountName -> account
	// AdminSAM names the account currently holding RID 500.
	AdminSAM     string
	NeverExpires map[string]bool // dn -> flag set

	SubnetCreates int
	GroupCreates  int
	PSOCreates    int

	FailSetQuota     error
	FailCreateSubnet map[string]error
	FailCreatePSO    map[string]error
	FailClearExpiry  map[string]error
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		Sites:        []string{"Default-First-Site-Name"},
		Subnets:      map[string]string{},
		Groups:       map[string][]string{},
		PSOs:         map[string]PasswordSettings{},
		Account:      map[string]Account{},
		NeverExpires: map[string]bool{},
	}
}

// AddAccount seeds a principal and returns its DN.
func (m *MemoryDirectory) AddAccount(sam string, isUser bool) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	dn := "CN=" + sam + ",CN=Users,DC=corp,DC=example"
	m.Account[sam] = Account{DN: dn, SAMAccountName: sam, IsUser: isUser}
	return dn
}

func (m *MemoryDirectory) MachineAccountQuota() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.QuotaReadback != nil {
		return *m.QuotaReadback, nil
	}
	return m.Quota, nil
}

func (m *MemoryDirectory) SetMachineAccountQuota(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuotaWrites++
	if m.FailSetQuota != nil {
		return m.FailSetQuota
	}
	m.Quota = n
	return nil
}

func (m *MemoryDirectory) FirstSiteName() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.Sites) == 0 {
		return "", fmt.Errorf("no replication sites")
	}
	return m.Sites[0], nil
}

func (m *MemoryDirectory) SubnetExists(cidr string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.Subnets[cidr]
	return ok, nil
}

func (m *MemoryDirectory) CreateSubnet(cidr, site string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubnetCreates++
	if err := m.FailCreateSubnet[cidr]; err != nil {
		return err
	}
	if _, ok := m.Subnets[cidr]; ok {
		return ErrExists
	}
	m.Subnets[cidr] = site
	return nil
}

func (m *MemoryDirectory) GroupExists(name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.Groups[name]
	return ok, nil
}

func (m *MemoryDirectory) CreateGroup(name, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GroupCreates++
	if _, ok := m.Groups[name]; ok {
		return ErrExists
	}
	m.Groups[name] = []string{}
	return nil
}

func (m *MemoryDirectory) AddGroupMember(group, memberDN string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members, ok := m.Groups[group]
	if !ok {
		return fmt.Errorf("group %s not found", group)
	}
	for _, dn := range members {
		if dn == memberDN {
			return ErrExists
		}
	}
	m.Groups[group] = append(members, memberDN)
	return nil
}

func (m *MemoryDirectory) FindAccount(sam string) (Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.Account[sam]
	return a, ok, nil
}

func (m *MemoryDirectory) AdministratorAccount() (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.Account[m.AdminSAM]
	if !ok {
		return Account{}, fmt.Errorf("administrator account not found")
	}
	return a, nil
}

func (m *MemoryDirectory) ClearPasswordNeverExpires(dn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailClearExpiry[dn]; err != nil {
		return err
	}
	m.NeverExpires[dn] = false
	return nil
}

func (m *MemoryDirectory) CreatePasswordSettings(ps PasswordSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PSOCreates++
	if err := m.FailCreatePSO[ps.Name]; err != nil {
		return err
	}
	if _, ok := m.PSOs[ps.Name]; ok {
		return ErrExists
	}
	if _, ok := m.Groups[ps.AppliesToGroup]; !ok {
		return fmt.Errorf("group %s not found", ps.AppliesToGroup)
	}
	m.PSOs[ps.Name] = ps
	return nil
}
