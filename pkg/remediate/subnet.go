package remediate

import (
	"fmt"
	"net"

	"dc-harden/pkg/directory"
)

// AdapterAddr is one local interface address candidate for registration.
type AdapterAddr struct {
	IP        string
	PrefixLen int
}

// LocalAdapterAddrs lists the non-loopback IPv4 addresses of this host with
// their prefix lengths.
func LocalAdapterAddrs() ([]AdapterAddr, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("list interface addresses: %w", err)
	}
	var out []AdapterAddr
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() || ipnet.IP.To4() == nil {
			continue
		}
		ones, _ := ipnet.Mask.Size()
		out = append(out, AdapterAddr{IP: ipnet.IP.String(), PrefixLen: ones})
	}
	return out, nil
}

// NetworkCIDR masks addr by prefixLen and formats the subnet identifier
// "a.b.c.d/n".
func NetworkCIDR(addr string, prefixLen int) (string, error) {
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil {
		return "", fmt.Errorf("not an IPv4 address: %q", addr)
	}
	if prefixLen < 0 || prefixLen > 32 {
		return "", fmt.Errorf("prefix length %d out of range", prefixLen)
	}
	network := ip.To4().Mask(net.CIDRMask(prefixLen, 32))
	return fmt.Sprintf("%s/%d", network, prefixLen), nil
}

// RegisterSubnets ensures every adapter's subnet is registered as a
// replication subnet object under the first site. One adapter's failure never
// stops the others; the overall severity is the worst seen. Re-running against
// an unchanged network creates nothing.
func RegisterSubnets(dir directory.Client, addrs []AdapterAddr) *Result {
	res := NewResult()
	site, err := dir.FirstSiteName()
	if err != nil {
		res.Errorf("resolve replication site: %v", err)
		return res
	}
	for _, a := range addrs {
		cidr, err := NetworkCIDR(a.IP, a.PrefixLen)
		if err != nil {
			res.Errorf("compute network for %s/%d: %v", a.IP, a.PrefixLen, err)
			continue
		}
		exists, err := dir.SubnetExists(cidr)
		if err != nil {
			res.Errorf("lookup subnet %s: %v", cidr, err)
			continue
		}
		if exists {
			res.Logf("subnet %s already registered, no action", cidr)
			continue
		}
		if err := dir.CreateSubnet(cidr, site); err != nil {
			res.Errorf("create subnet %s in site %s: %v", cidr, site, err)
			continue
		}
		res.Logf("created subnet %s in site %s", cidr, site)
	}
	return res
}
