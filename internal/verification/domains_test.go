package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "nepalpolice.gov.np", EmailDomain("lostfound@nepalpolice.gov.np"))
	assert.Equal(t, "gmail.com", EmailDomain("someone@GMAIL.COM"))
	assert.Equal(t, "", EmailDomain("not-an-email"))
	assert.Equal(t, "", EmailDomain("@missing-local.com"))
	assert.Equal(t, "", EmailDomain("trailing@"))
}

func TestIsBlocked(t *testing.T) {
	lists := defaultDomainLists
	assert.True(t, lists.IsBlocked("gmail.com"))
	assert.True(t, lists.IsBlocked("yahoo.com"))
	assert.False(t, lists.IsBlocked("nepalpolice.gov.np"))
	assert.False(t, lists.IsBlocked("hotel-annapurna.com.np"))
}

func TestIsTrusted(t *testing.T) {
	lists := defaultDomainLists

	// exact match
	assert.True(t, lists.IsTrusted("nepalpolice.gov.np"))

	// subdomain of a trusted suffix
	assert.True(t, lists.IsTrusted("lalitpur.gov.np"))
	assert.True(t, lists.IsTrusted("cs.tu.edu.np"))

	// not merely containing the string
	assert.False(t, lists.IsTrusted("fakegov.np"))
	assert.False(t, lists.IsTrusted("example.com"))
}
