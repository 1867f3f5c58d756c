package remediate

import "dc-harden/pkg/directory"

// FixAccountQuota sets ms-DS-MachineAccountQuota to 0 so non-privileged users
// can no longer join machines to the domain, then re-reads to verify. A failed
// write ends the run with Error; a write that reads back non-zero is only a
// Warning since the directory accepted it. Single attempt, no retry.
func FixAccountQuota(dir directory.Client) *Result {
	res := NewResult()
	res.Logf("setting machine account quota to 0")
	if err := dir.SetMachineAccountQuota(0); err != nil {
		res.Errorf("set machine account quota: %v", err)
		return res
	}
	got, err := dir.MachineAccountQuota()
	if err != nil {
		res.Warnf("quota written but verification read failed: %v", err)
		return res
	}
	if got != 0 {
		res.Warnf("quota written but reads back as %d, expected 0", got)
		return res
	}
	res.Logf("machine account quota is 0 (verified)")
	return res
}
