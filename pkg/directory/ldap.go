package directory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
)

const (
	attrMachineAccountQuota = "ms-DS-MachineAccountQuota"
	attrUserAccountControl  = "userAccountControl"

	// UAC bit for "password never expires".
	uacDontExpirePassword = 0x10000

	// Global security group.
	groupTypeGlobalSecurity = "-2147483646"
)

// Config carries the connection settings for a domain controller.
type Config struct {
	URL      string // e.g. ldaps://dc01.corp.example:636
	BindDN   string
	Password string
	Timeout  time.Duration
}

// LDAPClient implements Client against a live domain controller.
type LDAPClient struct {
	conn     *ldap.Conn
	baseDN   string // defaultNamingContext
	configDN string // configurationNamingContext
}

// Dial connects, binds and reads the naming contexts from the RootDSE.
func Dial(cfg Config) (*LDAPClient, error) {
	conn, err := ldap.DialURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}
	if cfg.Timeout > 0 {
		conn.SetTimeout(cfg.Timeout)
	}
	if err := conn.Bind(cfg.BindDN, cfg.Password); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bind as %s: %w", cfg.BindDN, err)
	}
	c := &LDAPClient{conn: conn}
	if err := c.readRootDSE(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *LDAPClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// BaseDN returns the domain naming context, e.g. DC=corp,DC=example.
func (c *LDAPClient) BaseDN() string { return c.baseDN }

func (c *LDAPClient) readRootDSE() error {
	req := ldap.NewSearchRequest("", ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
		"(objectClass=*)", []string{"defaultNamingContext", "configurationNamingContext"}, nil)
	res, err := c.conn.Search(req)
	if err != nil {
		return fmt.Errorf("read RootDSE: %w", err)
	}
	if len(res.Entries) == 0 {
		return fmt.Errorf("RootDSE returned no entries")
	}
	c.baseDN = res.Entries[0].GetAttributeValue("defaultNamingContext")
	c.configDN = res.Entries[0].GetAttributeValue("configurationNamingContext")
	if c.baseDN == "" || c.configDN == "" {
		return fmt.Errorf("RootDSE missing naming contexts")
	}
	return nil
}

func (c *LDAPClient) MachineAccountQuota() (int, error) {
	req := ldap.NewSearchRequest(c.baseDN, ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
		"(objectClass=*)", []string{attrMachineAccountQuota}, nil)
	res, err := c.conn.Search(req)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", attrMachineAccountQuota, err)
	}
	if len(res.Entries) == 0 {
		return 0, fmt.Errorf("domain object %s not found", c.baseDN)
	}
	v := res.Entries[0].GetAttributeValue(attrMachineAccountQuota)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", attrMachineAccountQuota, v, err)
	}
	return n, nil
}

func (c *LDAPClient) SetMachineAccountQuota(n int) error {
	mod := ldap.NewModifyRequest(c.baseDN, nil)
	mod.Replace(attrMachineAccountQuota, []string{strconv.Itoa(n)})
	if err := c.conn.Modify(mod); err != nil {
		return fmt.Errorf("set %s=%d: %w", attrMachineAccountQuota, n, err)
	}
	return nil
}

func (c *LDAPClient) sitesDN() string   { return "CN=Sites," + c.configDN }
func (c *LDAPClient) subnetsDN() string { return "CN=Subnets,CN=Sites," + c.configDN }

func (c *LDAPClient) FirstSiteName() (string, error) {
	req := ldap.NewSearchRequest(c.sitesDN(), ldap.ScopeSingleLevel, ldap.NeverDerefAliases, 0, 0, false,
		"(objectClass=site)", []string{"cn"}, nil)
	res, err := c.conn.Search(req)
	if err != nil {
		return "", fmt.Errorf("list replication sites: %w", err)
	}
	if len(res.Entries) == 0 {
		return "", fmt.Errorf("no replication sites under %s", c.sitesDN())
	}
	return res.Entries[0].GetAttributeValue("cn"), nil
}

func (c *LDAPClient) SubnetExists(cidr string) (bool, error) {
	filter := fmt.Sprintf("(&(objectClass=subnet)(cn=%s))", ldap.EscapeFilter(cidr))
	req := ldap.NewSearchRequest(c.subnetsDN(), ldap.ScopeSingleLevel, ldap.NeverDerefAliases, 1, 0, false,
		filter, []string{"cn"}, nil)
	res, err := c.conn.Search(req)
	if err != nil {
		// Size-limit exceeded still means at least one match.
		if ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
			return true, nil
		}
		return false, fmt.Errorf("lookup subnet %s: %w", cidr, err)
	}
	return len(res.Entries) > 0, nil
}

func (c *LDAPClient) CreateSubnet(cidr, site string) error {
	dn := fmt.Sprintf("CN=%s,%s", ldap.EscapeDN(cidr), c.subnetsDN())
	add := ldap.NewAddRequest(dn, nil)
	add.Attribute("objectClass", []string{"top", "subnet"})
	add.Attribute("cn", []string{cidr})
	add.Attribute("siteObject", []string{fmt.Sprintf("CN=%s,%s", ldap.EscapeDN(site), c.sitesDN())})
	if err := c.conn.Add(add); err != nil {
		return wrapExists(err, fmt.Sprintf("create subnet %s", cidr))
	}
	return nil
}

func (c *LDAPClient) groupDN(name string) (string, error) {
	filter := fmt.Sprintf("(&(objectClass=group)(sAMAccountName=%s))", ldap.EscapeFilter(name))
	req := ldap.NewSearchRequest(c.baseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
		filter, []string{"distinguishedName"}, nil)
	res, err := c.conn.Search(req)
	if err != nil {
		return "", fmt.Errorf("lookup group %s: %w", name, err)
	}
	if len(res.Entries) == 0 {
		return "", fmt.Errorf("group %s not found", name)
	}
	return res.Entries[0].DN, nil
}

func (c *LDAPClient) GroupExists(name string) (bool, error) {
	_, err := c.groupDN(name)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *LDAPClient) CreateGroup(name, description string) error {
	dn := fmt.Sprintf("CN=%s,CN=Users,%s", ldap.EscapeDN(name), c.baseDN)
	add := ldap.NewAddRequest(dn, nil)
	add.Attribute("objectClass", []string{"top", "group"})
	add.Attribute("sAMAccountName", []string{name})
	add.Attribute("groupType", []string{groupTypeGlobalSecurity})
	if description != "" {
		add.Attribute("description", []string{description})
	}
	if err := c.conn.Add(add); err != nil {
		return wrapExists(err, fmt.Sprintf("create group %s", name))
	}
	return nil
}

func (c *LDAPClient) AddGroupMember(group, memberDN string) error {
	dn, err := c.groupDN(group)
	if err != nil {
		return err
	}
	mod := ldap.NewModifyRequest(dn, nil)
	mod.Add("member", []string{memberDN})
	if err := c.conn.Modify(mod); err != nil {
		// AD rejects duplicate member values with attributeOrValueExists.
		if ldap.IsErrorWithCode(err, ldap.LDAPResultAttributeOrValueExists) {
			return ErrExists
		}
		return fmt.Errorf("add %s to %s: %w", memberDN, group, err)
	}
	return nil
}

func (c *LDAPClient) FindAccount(samAccountName string) (Account, bool, error) {
	filter := fmt.Sprintf("(sAMAccountName=%s)", ldap.EscapeFilter(samAccountName))
	req := ldap.NewSearchRequest(c.baseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
		filter, []string{"sAMAccountName", "objectClass"}, nil)
	res, err := c.conn.Search(req)
	if err != nil {
		return Account{}, false, fmt.Errorf("lookup account %s: %w", samAccountName, err)
	}
	if len(res.Entries) == 0 {
		return Account{}, false, nil
	}
	return entryToAccount(res.Entries[0]), true, nil
}

// AdministratorAccount resolves the built-in administrator by RID 500 from
// the domain SID, so a renamed account still resolves correctly.
func (c *LDAPClient) AdministratorAccount() (Account, error) {
	req := ldap.NewSearchRequest(c.baseDN, ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
		"(objectClass=*)", []string{"objectSid"}, nil)
	res, err := c.conn.Search(req)
	if err != nil || len(res.Entries) == 0 {
		return Account{}, fmt.Errorf("read domain SID: %w", err)
	}
	domainSID, err := SIDString(res.Entries[0].GetRawAttributeValue("objectSid"))
	if err != nil {
		return Account{}, fmt.Errorf("decode domain SID: %w", err)
	}
	adminSID := domainSID + "-500"
	filter := fmt.Sprintf("(objectSid=%s)", ldap.EscapeFilter(adminSID))
	req = ldap.NewSearchRequest(c.baseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
		filter, []string{"sAMAccountName", "objectClass"}, nil)
	res, err = c.conn.Search(req)
	if err != nil {
		return Account{}, fmt.Errorf("lookup %s: %w", adminSID, err)
	}
	if len(res.Entries) == 0 {
		return Account{}, fmt.Errorf("administrator account %s not found", adminSID)
	}
	return entryToAccount(res.Entries[0]), nil
}

func (c *LDAPClient) ClearPasswordNeverExpires(dn string) error {
	req := ldap.NewSearchRequest(dn, ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
		"(objectClass=*)", []string{attrUserAccountControl}, nil)
	res, err := c.conn.Search(req)
	if err != nil || len(res.Entries) == 0 {
		return fmt.Errorf("read %s of %s: %w", attrUserAccountControl, dn, err)
	}
	uac, err := strconv.Atoi(res.Entries[0].GetAttributeValue(attrUserAccountControl))
	if err != nil {
		return fmt.Errorf("parse %s of %s: %w", attrUserAccountControl, dn, err)
	}
	if uac&uacDontExpirePassword == 0 {
		return nil
	}
	mod := ldap.NewModifyRequest(dn, nil)
	mod.Replace(attrUserAccountControl, []string{strconv.Itoa(uac &^ uacDontExpirePassword)})
	if err := c.conn.Modify(mod); err != nil {
		return fmt.Errorf("clear password-never-expires on %s: %w", dn, err)
	}
	return nil
}

func (c *LDAPClient) CreatePasswordSettings(ps PasswordSettings) error {
	groupDN, err := c.groupDN(ps.AppliesToGroup)
	if err != nil {
		return err
	}
	dn := fmt.Sprintf("CN=%s,CN=Password Settings Container,CN=System,%s", ldap.EscapeDN(ps.Name), c.baseDN)
	add := ldap.NewAddRequest(dn, nil)
	add.Attribute("objectClass", []string{"top", "msDS-PasswordSettings"})
	add.Attribute("cn", []string{ps.Name})
	add.Attribute("msDS-PasswordSettingsPrecedence", []string{strconv.Itoa(ps.Precedence)})
	add.Attribute("msDS-MaximumPasswordAge", []string{adInterval(ps.MaxPasswordAge)})
	add.Attribute("msDS-MinimumPasswordAge", []string{adInterval(ps.MinPasswordAge)})
	add.Attribute("msDS-MinimumPasswordLength", []string{strconv.Itoa(ps.MinPasswordLength)})
	add.Attribute("msDS-PasswordHistoryLength", []string{strconv.Itoa(ps.HistoryLength)})
	add.Attribute("msDS-LockoutThreshold", []string{strconv.Itoa(ps.LockoutThreshold)})
	add.Attribute("msDS-LockoutDuration", []string{adInterval(ps.LockoutDuration)})
	add.Attribute("msDS-LockoutObservationWindow", []string{adInterval(ps.LockoutWindow)})
	add.Attribute("msDS-PasswordComplexityEnabled", []string{"TRUE"})
	add.Attribute("msDS-PasswordReversibleEncryptionEnabled", []string{"FALSE"})
	add.Attribute("msDS-PSOAppliesTo", []string{groupDN})
	if err := c.conn.Add(add); err != nil {
		return wrapExists(err, fmt.Sprintf("create password settings %s", ps.Name))
	}
	return nil
}

func entryToAccount(e *ldap.Entry) Account {
	classes := e.GetAttributeValues("objectClass")
	isUser := false
	for _, cl := range classes {
		if strings.EqualFold(cl, "user") {
			isUser = true
		}
		if strings.EqualFold(cl, "group") || strings.EqualFold(cl, "computer") {
			isUser = false
			break
		}
	}
	return Account{
		DN:             e.DN,
		SAMAccountName: e.GetAttributeValue("sAMAccountName"),
		IsUser:         isUser,
	}
}

// adInterval renders a duration as a negative count of 100ns ticks, the
// encoding AD expects for PSO age/lockout attributes.
func adInterval(d time.Duration) string {
	return strconv.FormatInt(-(d.Nanoseconds() / 100), 10)
}

func wrapExists(err error, op string) error {
	if ldap.IsErrorWithCode(err, ldap.LDAPResultEntryAlreadyExists) {
		return ErrExists
	}
	return fmt.Errorf("%s: %w", op, err)
}
