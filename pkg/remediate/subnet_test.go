package remediate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dc-harden/pkg/directory"
	"dc-harden/pkg/model"
)

func TestNetworkCIDR(t *testing.T) {
	cases := []struct {
		addr   string
		prefix int
		want   string
	}{
		{"192.168.10.57", 24, "192.168.10.0/24"},
		{"10.20.33.200", 16, "10.20.0.0/16"},
		{"172.16.5.9", 20, "172.16.0.0/20"},
		{"192.168.1.1", 32, "192.168.1.1/32"},
	}
	for _, c := range cases {
		got, err := NetworkCIDR(c.addr, c.prefix)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestNetworkCIDRRejectsBadInput(t *testing.T) {
	_, err := NetworkCIDR("not-an-ip", 24)
	assert.Error(t, err)
	_, err = NetworkCIDR("fe80::1", 64)
	assert.Error(t, err, "IPv6 addresses are out of scope")
	_, err = NetworkCIDR("10.0.0.1", 33)
	assert.Error(t, err)
}

func TestRegisterSubnetsCreatesOnlyMissing(t *testing.T) {
	dir := directory.NewMemoryDirectory()
	dir.Subnets["192.168.1.0/24"] = "Default-First-Site-Name"

	addrs := []AdapterAddr{
		{IP: "192.168.1.10", PrefixLen: 24}, // already registered
		{IP: "10.0.5.3", PrefixLen: 16},     // missing
		{IP: "172.16.9.1", PrefixLen: 24},   // missing
	}
	res := RegisterSubnets(dir, addrs)

	assert.Equal(t, model.SeverityInfo, res.Severity())
	assert.Equal(t, 2, dir.SubnetCreates, "one creation per missing subnet")
	assert.Contains(t, dir.Subnets, "10.0.0.0/16")
	assert.Contains(t, dir.Subnets, "172.16.9.0/24")
}

func TestRegisterSubnetsCreationFailureIsErrorAndContinues(t *testing.T) {
	dir := directory.NewMemoryDirectory()
	dir.FailCreateSubnet = map[string]error{
		"10.0.0.0/16": errors.New("constraint violation"),
	}
	addrs := []AdapterAddr{
		{IP: "10.0.5.3", PrefixLen: 16},
		{IP: "172.16.9.1", PrefixLen: 24},
	}
	res := RegisterSubnets(dir, addrs)

	assert.Equal(t, model.SeverityError, res.Severity())
	// The second adapter is still processed after the first one fails.
	assert.Contains(t, dir.Subnets, "172.16.9.0/24")
}

func TestRegisterSubnetsMalformedAddressIsErrorAndContinues(t *testing.T) {
	dir := directory.NewMemoryDirectory()
	addrs := []AdapterAddr{
		{IP: "bogus", PrefixLen: 24},
		{IP: "10.1.2.3", PrefixLen: 24},
	}
	res := RegisterSubnets(dir, addrs)

	assert.Equal(t, model.SeverityError, res.Severity())
	assert.Contains(t, dir.Subnets, "10.1.2.0/24")
}

func TestRegisterSubnetsIdempotent(t *testing.T) {
	dir := directory.NewMemoryDirectory()
	addrs := []AdapterAddr{
		{IP: "192.168.1.10", PrefixLen: 24},
		{IP: "10.0.5.3", PrefixLen: 16},
	}

	first := RegisterSubnets(dir, addrs)
	require.Equal(t, model.SeverityInfo, first.Severity())
	created := dir.SubnetCreates

	second := RegisterSubnets(dir, addrs)
	assert.Equal(t, model.SeverityInfo, second.Severity())
	assert.Equal(t, created, dir.SubnetCreates, "second run creates nothing")
}
