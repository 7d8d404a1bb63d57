package npl

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

const testServices = `
# Network services, Internet style
ssh		22/tcp				# SSH Remote Login Protocol
domain		53/tcp
domain		53/udp
http		80/tcp		www		# WorldWideWeb HTTP
www-alt		80/tcp
bogus		notaport/tcp
broken
`

func TestParseServices(t *testing.T) {
	m := parseServices(strings.NewReader(testServices))

	assert.Check(t, is.Equal(m[serviceKey{22, "tcp"}], "ssh"))
	assert.Check(t, is.Equal(m[serviceKey{53, "udp"}], "domain"))
	// First entry wins.
	assert.Check(t, is.Equal(m[serviceKey{80, "tcp"}], "http"))
	assert.Check(t, is.Len(m, 4))

	_, ok := m[serviceKey{22, "udp"}]
	assert.Check(t, !ok)
}
