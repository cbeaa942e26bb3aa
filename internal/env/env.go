package env

import (
	"os"
	"strings"
)

// Var maps environment keys to values.
type Var map[string]string

// Env composes the child server's environment from an optional OS base plus
// explicit overrides. The server process inherits nothing unless asked to.
type Env struct {
	Var Var // explicit overrides (K->V)
	env Var // cached base from the OS environment
}

func New() *Env {
	return &Env{Var: make(Var)}
}

// FromOS caches the current process environment as the base.
func (e *Env) FromOS() {
	base := make(Var)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			if k := kv[:i]; k != "" {
				base[k] = kv[i+1:]
			}
		}
	}
	e.env = base
}

// Set records an explicit override.
func (e *Env) Set(k, v string) {
	if e.Var == nil {
		e.Var = make(Var)
	}
	e.Var[k] = v
}

// Merge builds the final "K=V" slice: cached OS base, then overrides, then
// the per-launch extras, with single-pass ${VAR} expansion against the
// composed map.
func (e *Env) Merge(extra []string) []string {
	m := make(Var)
	for k, v := range e.env {
		m[k] = v
	}
	for k, v := range e.Var {
		if k != "" {
			m[k] = v
		}
	}
	for _, kv := range extra {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			if k := kv[:i]; k != "" {
				m[k] = kv[i+1:]
			}
		}
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+expand(v, m))
	}
	return out
}

func expand(s string, m Var) string {
	for k, v := range m {
		s = strings.ReplaceAll(s, "${"+k+"}", v)
	}
	return s
}
