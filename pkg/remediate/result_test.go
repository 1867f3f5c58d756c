package remediate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dc-harden/pkg/model"
)

func TestResultSeverityOnlyEscalates(t *testing.T) {
	r := NewResult()
	assert.Equal(t, model.SeverityInfo, r.Severity())

	r.Warnf("first warning")
	assert.Equal(t, model.SeverityWarning, r.Severity())

	r.Logf("plain line")
	assert.Equal(t, model.SeverityWarning, r.Severity())

	r.Errorf("failure")
	assert.Equal(t, model.SeverityError, r.Severity())

	// A later warning or escalate call must not downgrade.
	r.Warnf("late warning")
	r.Escalate(model.SeverityInfo)
	assert.Equal(t, model.SeverityError, r.Severity())
}

func TestResultKeepsLineOrder(t *testing.T) {
	r := NewResult()
	r.Logf("one")
	r.Warnf("two")
	r.Errorf("three")
	assert.Equal(t, []string{"one", "two", "three"}, r.Lines())
}
