package npl

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

const servicesPath = "/etc/services"

type serviceKey struct {
	port  uint16
	proto string
}

var services struct {
	once   sync.Once
	byPort map[serviceKey]string
}

// lookupServiceName returns the first services database entry for port/proto.
func lookupServiceName(port uint16, proto string) (string, bool) {
	services.once.Do(func() {
		f, err := os.Open(servicesPath)
		if err != nil {
			services.byPort = map[serviceKey]string{}
			return
		}
		defer f.Close()
		services.byPort = parseServices(f)
	})
	name, ok := services.byPort[serviceKey{port, proto}]
	return name, ok
}

// parseServices reads services(5) lines: "name port/proto [aliases] [# comment]".
func parseServices(r io.Reader) map[serviceKey]string {
	m := make(map[serviceKey]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		portStr, proto, ok := strings.Cut(fields[1], "/")
		if !ok {
			continue
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			continue
		}
		key := serviceKey{uint16(port), proto}
		if _, dup := m[key]; !dup {
			m[key] = fields[0]
		}
	}
	return m
}
