package remediate

import (
	"errors"
	"time"

	"dc-harden/pkg/directory"
	"dc-harden/pkg/model"
)

// Fixed operational parameters applied to every password settings object;
// only maximum age, minimum length and precedence come from the document.
const (
	psoMinPasswordAge   = 24 * time.Hour
	psoHistoryLength    = 24
	psoLockoutThreshold = 5
	psoLockoutDuration  = 30 * time.Minute
	psoLockoutWindow    = 30 * time.Minute
)

// expiryClearBestEffort keeps a failed "password never expires" clear at the
// current severity: the failure is logged but the run outcome is unchanged.
// This matches the historical behavior; set to false to escalate to Warning.
const expiryClearBestEffort = true

// ProvisionPasswordPolicies walks the definitions in document order, ensuring
// for each one that the security group exists, the listed members belong to
// it, and a fine-grained password policy is created and linked to the group.
// A definition's failure never stops the remaining definitions.
func ProvisionPasswordPolicies(dir directory.Client, defs []model.PolicyDefinition) *Result {
	res := NewResult()
	for _, def := range defs {
		if !def.Validate() {
			res.Errorf("policy definition %q is incomplete, skipping", def.Name)
			continue
		}
		provisionOne(dir, def, res)
	}
	return res
}

func provisionOne(dir directory.Client, def model.PolicyDefinition, res *Result) {
	exists, err := dir.GroupExists(def.Name)
	if err != nil {
		res.Errorf("lookup group %s: %v", def.Name, err)
		return
	}
	if exists {
		res.Logf("group %s already exists", def.Name)
	} else {
		if err := dir.CreateGroup(def.Name, "Accounts governed by password policy "+def.Name); err != nil {
			res.Errorf("create group %s: %v", def.Name, err)
			return
		}
		res.Logf("created group %s", def.Name)
	}

	for _, ref := range def.Members {
		acct, err := resolveMember(dir, ref)
		if err != nil {
			res.Errorf("resolve member %s for %s: %v", ref, def.Name, err)
			continue
		}
		if err := dir.AddGroupMember(def.Name, acct.DN); err != nil {
			if errors.Is(err, directory.ErrExists) {
				res.Logf("%s already a member of %s", acct.SAMAccountName, def.Name)
			} else {
				res.Errorf("add %s to %s: %v", acct.SAMAccountName, def.Name, err)
				continue
			}
		} else {
			res.Logf("added %s to %s", acct.SAMAccountName, def.Name)
		}
		if acct.IsUser {
			if err := dir.ClearPasswordNeverExpires(acct.DN); err != nil {
				res.Logf("clear password-never-expires on %s failed: %v", acct.SAMAccountName, err)
				if !expiryClearBestEffort {
					res.Escalate(model.SeverityWarning)
				}
			}
		}
	}

	ps := directory.PasswordSettings{
		Name:              def.Name,
		MaxPasswordAge:    time.Duration(def.MaxPasswordAgeDays) * 24 * time.Hour,
		MinPasswordAge:    psoMinPasswordAge,
		MinPasswordLength: def.MinPasswordLength,
		HistoryLength:     psoHistoryLength,
		Precedence:        def.Precedence,
		LockoutThreshold:  psoLockoutThreshold,
		LockoutDuration:   psoLockoutDuration,
		LockoutWindow:     psoLockoutWindow,
		AppliesToGroup:    def.Name,
	}
	if err := dir.CreatePasswordSettings(ps); err != nil {
		if errors.Is(err, directory.ErrExists) {
			// Re-runs hit the directory's duplicate rejection; treated as a
			// no-op instead of Error.
			res.Logf("password settings %s already exist, no action", def.Name)
			return
		}
		res.Errorf("create password settings %s: %v", def.Name, err)
		return
	}
	res.Logf("created password settings %s (precedence %d)", def.Name, def.Precedence)
}

// resolveMember maps a member reference to a live account. The well-known
// administrator variant resolves through the domain SID (RID 500), so the
// account is found under whatever name it currently carries.
func resolveMember(dir directory.Client, ref model.MemberRef) (directory.Account, error) {
	if ref.WellKnownAdministrator {
		return dir.AdministratorAccount()
	}
	acct, ok, err := dir.FindAccount(ref.Name)
	if err != nil {
		return directory.Account{}, err
	}
	if !ok {
		return directory.Account{}, errors.New("account not found")
	}
	return acct, nil
}
