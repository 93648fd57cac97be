package config

import (
	"os"
	"path/filepath"
	"strings"
)

// expandEnvVars resolves ${VAR} / ${VAR:default} references and ~
// home-directory shorthand in every path-like config field.
func expandEnvVars(c *Config) {
	c.Scheduler.JobsDir = expandHome(expandEnv(c.Scheduler.JobsDir))
	c.Scheduler.LogDir = expandHome(expandEnv(c.Scheduler.LogDir))
	c.Store.Path = expandHome(expandEnv(c.Store.Path))
}

// expandEnv expands a ${VAR} or ${VAR:default} reference. Strings not
// starting with "${" are returned unchanged.
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		key, defaultVal := parts[0], parts[1]
		if val := os.Getenv(key); val != "" {
			return val
		}
		return defaultVal
	}

	return os.Getenv(s[2:end])
}

// expandHome rewrites a leading "~/" into the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
