package configuration

import (
	"bufio"
	"os"
	"strings"
)

// LoadEnvFromFile seeds the process environment from KEY=VALUE files (.env)
// before viper resolves the config. Missing files are skipped, blank lines
// and # comments are ignored, and values already present in the environment
// are never overridden, so deployment settings win over local files.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			key, val, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			// Values may be quoted: KEY="VALUE" or KEY='VALUE'.
			val = strings.Trim(strings.TrimSpace(val), `"'`)
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
		_ = f.Close()
	}
}
