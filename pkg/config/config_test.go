package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
policies:
  - name: PSO-Admins
    maxPasswordAgeDays: 180
    minPasswordLength: 16
    precedence: 10
    members:
      - builtin-administrator
      - svc-backup
  - name: PSO-Service
    maxPasswordAgeDays: 365
    minPasswordLength: 24
    precedence: 20
`

func TestParsePolicyDefinitions(t *testing.T) {
	defs, err := ParsePolicyDefinitions([]byte(sampleDoc))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	admins := defs[0]
	assert.Equal(t, "PSO-Admins", admins.Name)
	assert.Equal(t, 180, admins.MaxPasswordAgeDays)
	assert.Equal(t, 16, admins.MinPasswordLength)
	assert.Equal(t, 10, admins.Precedence)
	require.Len(t, admins.Members, 2)
	assert.True(t, admins.Members[0].WellKnownAdministrator, "keyword tags the well-known variant")
	assert.Empty(t, admins.Members[0].Name)
	assert.False(t, admins.Members[1].WellKnownAdministrator)
	assert.Equal(t, "svc-backup", admins.Members[1].Name)

	assert.Empty(t, defs[1].Members)
}

func TestParsePolicyDefinitionsRejectsIncomplete(t *testing.T) {
	doc := `
policies:
  - name: PSO-Broken
    minPasswordLength: 8
    precedence: 5
`
	_, err := ParsePolicyDefinitions([]byte(doc))
	assert.Error(t, err, "a definition without a max age must fail before any directory write")
}

func TestParsePolicyDefinitionsRejectsBadYAML(t *testing.T) {
	_, err := ParsePolicyDefinitions([]byte("policies: [unclosed"))
	assert.Error(t, err)
}
