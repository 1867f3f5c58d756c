package remediate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dc-harden/pkg/directory"
	"dc-harden/pkg/model"
)

func testDefs() []model.PolicyDefinition {
	return []model.PolicyDefinition{
		{Name: "PSO-Admins", MaxPasswordAgeDays: 180, MinPasswordLength: 16, Precedence: 10,
			Members: []model.MemberRef{{WellKnownAdministrator: true}}},
		{Name: "PSO-Service", MaxPasswordAgeDays: 365, MinPasswordLength: 24, Precedence: 20,
			Members: []model.MemberRef{{Name: "svc-backup"}}},
	}
}

func seededDirectory() *directory.MemoryDirectory {
	dir := directory.NewMemoryDirectory()
	dir.AdminSAM = "Administrator"
	dir.AddAccount("Administrator", true)
	dir.AddAccount("svc-backup", true)
	return dir
}

func TestProvisionCreatesGroupsMembersAndPolicies(t *testing.T) {
	dir := seededDirectory()

	res := ProvisionPasswordPolicies(dir, testDefs())

	require.Equal(t, model.SeverityInfo, res.Severity())
	assert.Len(t, dir.Groups["PSO-Admins"], 1)
	assert.Len(t, dir.Groups["PSO-Service"], 1)
	assert.Contains(t, dir.PSOs, "PSO-Admins")
	assert.Contains(t, dir.PSOs, "PSO-Service")
	assert.Equal(t, 10, dir.PSOs["PSO-Admins"].Precedence)
}

func TestProvisionSkipsExistingGroups(t *testing.T) {
	dir := seededDirectory()
	require.NoError(t, dir.CreateGroup("PSO-Admins", ""))
	require.NoError(t, dir.CreateGroup("PSO-Service", ""))
	dir.GroupCreates = 0

	res := ProvisionPasswordPolicies(dir, testDefs())

	assert.Equal(t, model.SeverityInfo, res.Severity())
	assert.Equal(t, 0, dir.GroupCreates, "existing groups are detected, not recreated")
}

func TestAdministratorResolutionIsRenameSafe(t *testing.T) {
	dir := seededDirectory()
	// The built-in administrator has been renamed; RID 500 still points at it.
	delete(dir.Account, "Administrator")
	adminDN := dir.AddAccount("root-kst", true)
	dir.AdminSAM = "root-kst"

	res := ProvisionPasswordPolicies(dir, testDefs()[:1])

	require.Equal(t, model.SeverityInfo, res.Severity())
	require.Len(t, dir.Groups["PSO-Admins"], 1)
	assert.Equal(t, adminDN, dir.Groups["PSO-Admins"][0])
}

func TestExpiryClearFailureStaysInfo(t *testing.T) {
	dir := seededDirectory()
	dn := dir.Account["svc-backup"].DN
	dir.FailClearExpiry = map[string]error{dn: errors.New("access denied")}

	res := ProvisionPasswordPolicies(dir, testDefs()[1:])

	// The failure is logged but deliberately does not change the outcome.
	assert.Equal(t, model.SeverityInfo, res.Severity())
	found := false
	for _, line := range res.Lines() {
		if strings.Contains(line, "access denied") {
			found = true
		}
	}
	assert.True(t, found, "expiry-clear failure must be logged")
}

func TestExistingPolicyIsNoOpNotError(t *testing.T) {
	dir := seededDirectory()

	first := ProvisionPasswordPolicies(dir, testDefs())
	require.Equal(t, model.SeverityInfo, first.Severity())

	second := ProvisionPasswordPolicies(dir, testDefs())
	assert.Equal(t, model.SeverityInfo, second.Severity(), "duplicate PSO rejection is treated as no action")
}

func TestPolicyCreationFailureIsErrorAndContinues(t *testing.T) {
	dir := seededDirectory()
	dir.FailCreatePSO = map[string]error{"PSO-Admins": errors.New("schema violation")}

	res := ProvisionPasswordPolicies(dir, testDefs())

	assert.Equal(t, model.SeverityError, res.Severity())
	assert.Contains(t, dir.PSOs, "PSO-Service", "later definitions still run")
}

func TestUnknownMemberIsErrorButPolicyStillCreated(t *testing.T) {
	dir := seededDirectory()
	defs := []model.PolicyDefinition{
		{Name: "PSO-Ghost", MaxPasswordAgeDays: 90, MinPasswordLength: 12, Precedence: 30,
			Members: []model.MemberRef{{Name: "no-such-user"}}},
	}

	res := ProvisionPasswordPolicies(dir, defs)

	assert.Equal(t, model.SeverityError, res.Severity())
	assert.Contains(t, dir.PSOs, "PSO-Ghost")
}
