// Package featureflags evaluates rollout flags from a key=value list.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	PromotionJob = "promotion_job"
	Voting       = "voting"
)

// defaults apply when a known flag is absent from the configuration.
var defaults = map[string]bool{
	PromotionJob: true,
	Voting:       true,
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "voting=on,promotion_job=off,new_editor=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
// Malformed pairs are ignored.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user. Unknown flags
// fall back to their registered default, or false.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
func (m *Manager) Enabled(name string, userID uint) bool {
	return m.EnabledOr(name, userID, defaults[normalize(name)])
}

// EnabledOr is Enabled with an explicit fallback for unset or unparseable flags.
func (m *Manager) EnabledOr(name string, userID uint, fallback bool) bool {
	if m == nil {
		return fallback
	}
	value, ok := m.flags[normalize(name)]
	if !ok {
		return fallback
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return fallback
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil {
		return fallback
	}
	switch {
	case pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Names lists configured and known flags, sorted.
func (m *Manager) Names() []string {
	seen := make(map[string]struct{}, len(m.flags)+len(defaults))
	for name := range defaults {
		seen[name] = struct{}{}
	}
	for name := range m.flags {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns evaluated flag status for one user, known flags included.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	names := m.Names()
	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
