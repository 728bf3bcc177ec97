// internal/app/registry.go
//
// A super-light registry: app packages call Register(name, script) in an
// init() function.  The HTTP surface looks up the exact app name taken from
// the URL and runs the script for the calling session.
//
// Script signature:
//
//	func(c *runner.Context) error
//
// Registering the same name twice replaces the earlier script.
package app

import (
	"sort"
	"sync"

	"github.com/yanizio/adept-charts/internal/runner"
)

var (
	mu       sync.RWMutex
	registry = map[string]runner.Script{}
)

// Register is called from app init() functions.
func Register(name string, s runner.Script) {
	mu.Lock()
	registry[name] = s
	mu.Unlock()
}

// Lookup returns the script for an exact name or nil.
func Lookup(name string) runner.Script {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// Names lists registered apps, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
