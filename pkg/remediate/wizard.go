package remediate

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WizardAnswers is the data collected by the domain-provisioning wizard.
// Collection only: nothing in here provisions a forest yet.
type WizardAnswers struct {
	ForestName  string    `json:"forestName"`
	SiteName    string    `json:"siteName,omitempty"`
	CollectedAt time.Time `json:"collectedAt"`
}

// LoadWizardAnswers reads a previously saved answers document; a missing or
// unreadable file just means no prior choices.
func LoadWizardAnswers(path string) (WizardAnswers, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WizardAnswers{}, false
	}
	var a WizardAnswers
	if err := json.Unmarshal(data, &a); err != nil {
		return WizardAnswers{}, false
	}
	return a, true
}

// SaveWizardAnswers persists the answers next to the agent state.
func SaveWizardAnswers(path string, a WizardAnswers) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// CollectWizardAnswers prompts for provisioning choices, offering the prior
// answers as defaults when present.
func CollectWizardAnswers(in io.Reader, out io.Writer, prior WizardAnswers) (WizardAnswers, error) {
	scanner := bufio.NewScanner(in)
	a := WizardAnswers{CollectedAt: time.Now()}

	a.ForestName = prompt(scanner, out, "forest root domain name", prior.ForestName)
	if a.ForestName == "" {
		return a, fmt.Errorf("forest name is required")
	}
	a.SiteName = prompt(scanner, out, "first site name", prior.SiteName)
	return a, nil
}

func prompt(scanner *bufio.Scanner, out io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	if !scanner.Scan() {
		return def
	}
	v := strings.TrimSpace(scanner.Text())
	if v == "" {
		return def
	}
	return v
}
