// Package config loads the agent's environment and the password-policy
// document consumed by the provisioner.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dc-harden/pkg/model"
)

// LoadDotEnv loads .env from the working directory if present; missing files
// are not an error.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

// Getenv returns the variable's value or a default.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type policyDocument struct {
	Policies []model.PolicyDefinition `yaml:"policies"`
}

// LoadPolicyDefinitions parses the policy document and rejects incomplete
// definitions up front, so a bad document fails before any directory write.
func LoadPolicyDefinitions(path string) ([]model.PolicyDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy document %s: %w", path, err)
	}
	return ParsePolicyDefinitions(data)
}

// ParsePolicyDefinitions decodes an already-read policy document.
func ParsePolicyDefinitions(data []byte) ([]model.PolicyDefinition, error) {
	var doc policyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse policy document: %w", err)
	}
	for i, p := range doc.Policies {
		if !p.Validate() {
			return nil, fmt.Errorf("policy %d (%q) is incomplete: need name, maxPasswordAgeDays, minPasswordLength, precedence", i, p.Name)
		}
	}
	return doc.Policies, nil
}
