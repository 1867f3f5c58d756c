package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dc-harden/pkg/agent"
	"dc-harden/pkg/config"
	"dc-harden/pkg/directory"
	"dc-harden/pkg/eventlog"
	"dc-harden/pkg/model"
	"dc-harden/pkg/remediate"
	"dc-harden/pkg/version"
)

const allProcedures = "account_quota,subnets,password_policies"

func main() {
	_ = config.LoadDotEnv()

	defaultHost, _ := os.Hostname()

	host := flag.String("host", config.Getenv("AGENT_HOST", defaultHost), "host name reported to the controller")
	ldapURL := flag.String("ldap-url", os.Getenv("LDAP_URL"), "domain controller URL, e.g. ldaps://dc01.corp.example:636")
	bindDN := flag.String("ldap-bind-dn", os.Getenv("LDAP_BIND_DN"), "bind DN or UPN")
	bindPass := flag.String("ldap-password", os.Getenv("LDAP_PASSWORD"), "bind password (env LDAP_PASSWORD)")
	domain := flag.String("domain", os.Getenv("AD_DOMAIN"), "domain name reported with each run (informational)")
	procedures := flag.String("procedures", allProcedures, "comma separated procedures to run")
	policiesPath := flag.String("policies", config.Getenv("POLICY_DOC", "policies.yaml"), "password policy document (required for password_policies)")
	controller := flag.String("controller", os.Getenv("CONTROLLER_ADDR"), "controller base URL (optional)")
	token := flag.String("token", os.Getenv("AUTH_TOKEN"), "auth token matching controller --token")
	eventLogPath := flag.String("eventlog", os.Getenv("EVENT_LOG"), "event log file (default stderr)")
	dryRun := flag.Bool("dry-run", false, "run against an in-memory directory instead of LDAP")
	history := flag.Int("history", 0, "print the last N local runs and exit")
	wizard := flag.Bool("wizard", false, "collect domain-provisioning answers and exit")
	showVersion := flag.Bool("v", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		log.Printf("agent version=%s", version.Build)
		return
	}

	if *history > 0 {
		for _, r := range agent.RecentRuns(*history) {
			fmt.Printf("%s %s %s\n", r.Timestamp.Format(time.RFC3339), r.Severity, r.Procedure)
			for _, line := range r.Logs {
				fmt.Printf("  %s\n", line)
			}
		}
		return
	}

	if *wizard {
		runWizard()
		return
	}

	// Severity maps straight onto the exit code: 0 info, 1 warning, 2 error.
	os.Exit(run(*host, *ldapURL, *bindDN, *bindPass, *domain, *procedures, *policiesPath, *controller, *token, *eventLogPath, *dryRun))
}

func run(host, ldapURL, bindDN, bindPass, domain, procedures, policiesPath, controller, token, eventLogPath string, dryRun bool) int {
	procs := splitProcedures(procedures)
	if len(procs) == 0 {
		log.Fatalf("no procedures selected")
	}

	var defs []model.PolicyDefinition
	if contains(procs, model.ProcedurePasswordPolicies) {
		var err error
		defs, err = config.LoadPolicyDefinitions(policiesPath)
		if err != nil {
			log.Fatalf("load policy document: %v", err)
		}
	}

	var dir directory.Client
	if dryRun {
		log.Printf("dry run: using in-memory directory")
		mem := directory.NewMemoryDirectory()
		mem.AdminSAM = "Administrator"
		mem.AddAccount("Administrator", true)
		dir = mem
	} else {
		if ldapURL == "" || bindDN == "" {
			log.Fatalf("-ldap-url and -ldap-bind-dn are required (or use -dry-run)")
		}
		ldapClient, err := directory.Dial(directory.Config{
			URL:      ldapURL,
			BindDN:   bindDN,
			Password: bindPass,
			Timeout:  15 * time.Second,
		})
		if err != nil {
			log.Fatalf("connect to directory: %v", err)
		}
		defer ldapClient.Close()
		if domain == "" {
			domain = ldapClient.BaseDN()
		}
		dir = ldapClient
	}

	sink := eventlog.New(eventLogPath)
	if err := sink.Init(); err != nil {
		log.Fatalf("event sink init: %v", err)
	}
	defer sink.Close()

	runner := agent.NewRunner(dir, sink, host, domain, strings.TrimSuffix(controller, "/"), token)
	worst := runner.Run(procs, defs)
	log.Printf("run complete, worst severity=%s", worst)
	return int(worst)
}

func runWizard() {
	statePath := config.Getenv("WIZARD_STATE", filepath.Join("/var/lib/dc-harden", "wizard.json"))
	prior, _ := remediate.LoadWizardAnswers(statePath)
	answers, err := remediate.CollectWizardAnswers(os.Stdin, os.Stdout, prior)
	if err != nil {
		log.Fatalf("wizard: %v", err)
	}
	if err := remediate.SaveWizardAnswers(statePath, answers); err != nil {
		log.Fatalf("save wizard answers: %v", err)
	}
	log.Printf("answers saved to %s", statePath)
}

func splitProcedures(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
