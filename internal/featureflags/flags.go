// Package featureflags evaluates runtime switches configured as a
// comma-separated list, e.g. "live_feed=on,open_registration=off,live_feed=25%".
package featureflags

import (
	"hash/fnv"
	"maps"
	"strconv"
	"strings"
)

// Known flags.
const (
	// LiveFeed serves the per-post websocket stream. Percentages roll it out
	// by post id.
	LiveFeed = "live_feed"
	// OpenRegistration lets anyone create an account.
	OpenRegistration = "open_registration"
)

// Defaults applies when FEATURE_FLAGS is unset.
const Defaults = LiveFeed + "=on," + OpenRegistration + "=on"

// Flags is an immutable set of parsed flag values.
type Flags struct {
	values map[string]string
}

// Parse reads raw. Malformed pairs are skipped and later pairs win.
func Parse(raw string) *Flags {
	values := make(map[string]string)
	for pair := range strings.SplitSeq(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		values[key] = value
	}
	return &Flags{values: values}
}

// On reports whether name is switched fully on. Partial rollouts count as off.
func (f *Flags) On(name string) bool {
	return f.Enabled(name, 0)
}

// Enabled evaluates name for subject, the id a rollout percentage is bucketed
// on. Unknown flags are off; a nil set has everything off.
func (f *Flags) Enabled(name string, subject uint) bool {
	if f == nil {
		return false
	}
	value, ok := f.values[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	switch {
	case err != nil || pct <= 0:
		return false
	case pct >= 100:
		return true
	case subject == 0:
		return false
	}
	return bucket(name, subject) < pct
}

// Values returns a copy of the parsed flags.
func (f *Flags) Values() map[string]string {
	return maps.Clone(f.values)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, subject uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + strconv.FormatUint(uint64(subject), 10)))
	return int(h.Sum32() % 100)
}
