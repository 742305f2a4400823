package cgi

import (
	"os"
	"strings"
)

// Env is an immutable snapshot of the CGI meta-variables a host server set
// for this invocation. Request construction works on the snapshot rather
// than on the process environment, so it stays a pure function.
type Env map[string]string

// OSEnv captures the current process environment.
func OSEnv() Env {
	return ParseEnviron(os.Environ())
}

// ParseEnviron builds an Env from "KEY=VALUE" pairs as returned by
// os.Environ. Entries without a key are dropped.
func ParseEnviron(environ []string) Env {
	env := make(Env, len(environ))
	for _, kv := range environ {
		if idx := strings.Index(kv, "="); idx > 0 {
			env[kv[:idx]] = kv[idx+1:]
		}
	}
	return env
}

// Get returns the value for key, or fallback if the variable is absent
// or empty.
func (e Env) Get(key, fallback string) string {
	if v, ok := e[key]; ok && v != "" {
		return v
	}
	return fallback
}
