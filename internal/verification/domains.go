// Package verification implements the organization verification state
// machine: draft editing, submission with contact validation, and the
// admin-driven review transitions, each with a durable audit record.
package verification

import (
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// DomainLists holds the email-domain policy used during submission. Blocked
// domains are consumer providers an institution cannot register with; trusted
// domains mark known institutional senders (informational only, human review
// still applies).
type DomainLists struct {
	BlockedDomains []string `yaml:"blocked_domains"`
	TrustedDomains []string `yaml:"trusted_domains"`
}

var defaultDomainLists = DomainLists{
	BlockedDomains: []string{
		"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
		"aol.com", "icloud.com", "live.com", "mail.com", "protonmail.com",
	},
	TrustedDomains: []string{
		"nepalpolice.gov.np", "gov.np", "edu.np",
		"tiairport.com.np", "ntc.net.np",
	},
}

// LoadDomainLists reads the domain policy from the YAML file named by
// KHOJPAYO_DOMAIN_CONFIG, falling back to the built-in lists when the
// variable is unset or the file cannot be read.
func LoadDomainLists() DomainLists {
	path := os.Getenv("KHOJPAYO_DOMAIN_CONFIG")
	if path == "" {
		return defaultDomainLists
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return defaultDomainLists
	}

	var lists DomainLists
	if err := yaml.Unmarshal(raw, &lists); err != nil {
		return defaultDomainLists
	}
	if len(lists.BlockedDomains) == 0 {
		lists.BlockedDomains = defaultDomainLists.BlockedDomains
	}
	if len(lists.TrustedDomains) == 0 {
		lists.TrustedDomains = defaultDomainLists.TrustedDomains
	}
	return lists
}

// EmailDomain extracts the lowercased domain of an email address, or ""
// when the address is malformed.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

func matchesDomain(domain, entry string) bool {
	return domain == entry || strings.HasSuffix(domain, "."+entry)
}

// IsBlocked reports whether the domain is a blocked generic provider
func (d DomainLists) IsBlocked(domain string) bool {
	for _, entry := range d.BlockedDomains {
		if matchesDomain(domain, entry) {
			return true
		}
	}
	return false
}

// IsTrusted reports whether the domain belongs to a known institution
func (d DomainLists) IsTrusted(domain string) bool {
	for _, entry := range d.TrustedDomains {
		if matchesDomain(domain, entry) {
			return true
		}
	}
	return false
}
