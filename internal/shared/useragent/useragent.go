// Package useragent holds the pool of browser identities attached to
// outbound probe requests.
package useragent

import (
	"bufio"
	"math/rand"
	"os"
	"strings"
)

// builtin covers current desktop Chrome, Firefox and Edge on the three
// major platforms. Extended at runtime from user_agents.txt when present.
var builtin = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
}

// Pool is an immutable-after-construction set of user-agent strings.
type Pool struct {
	agents []string
}

// NewPool returns a pool seeded with the builtin identities.
func NewPool() *Pool {
	agents := make([]string, len(builtin))
	copy(agents, builtin)
	return &Pool{agents: agents}
}

// LoadFile appends unique, non-empty lines from path. A missing file is
// not an error; the builtin set simply stands alone.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	seen := make(map[string]struct{}, len(p.agents))
	for _, a := range p.agents {
		seen[a] = struct{}{}
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		p.agents = append(p.agents, line)
	}
	return scanner.Err()
}

// Random picks one identity from the pool.
func (p *Pool) Random() string {
	return p.agents[rand.Intn(len(p.agents))]
}

// Len reports the number of identities available.
func (p *Pool) Len() int {
	return len(p.agents)
}
