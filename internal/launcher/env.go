// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"fmt"
	"sort"
	"strings"
)

// envToMap converts KEY=VALUE pairs into a map. Later entries win, which
// matches how the OS resolves duplicate environment entries.
func envToMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// envToSlice converts an environment map into sorted KEY=VALUE form.
// Sorting keeps subprocess environments deterministic for tests.
func envToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for key, value := range env {
		out = append(out, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(out)
	return out
}

// envValue returns the value of key within a KEY=VALUE slice, or "".
func envValue(environ []string, key string) string {
	prefix := key + "="
	for i := len(environ) - 1; i >= 0; i-- {
		if strings.HasPrefix(environ[i], prefix) {
			return environ[i][len(prefix):]
		}
	}
	return ""
}
