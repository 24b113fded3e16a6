package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Env resolves environment variables for runtime discovery.
// The process environment wins over the per-user .env file, so a value
// exported in the shell always beats a stored default.
type Env struct {
	// Base environment (typically os.Environ())
	base map[string]string
	// Per-user .env file variables
	file map[string]string
}

// NewEnv creates an Env over the current process environment.
func NewEnv() *Env {
	return &Env{
		base: envToMap(os.Environ()),
		file: make(map[string]string),
	}
}

// NewEnvFromMap creates an Env over a fixed set of variables.
func NewEnvFromMap(vars map[string]string) *Env {
	base := make(map[string]string, len(vars))
	for k, v := range vars {
		base[k] = v
	}

	return &Env{base: base, file: make(map[string]string)}
}

// LoadGlobalEnv loads ~/.consulo/launcher/.env if it exists.
func (e *Env) LoadGlobalEnv() error {
	path, err := GlobalEnvPath()
	if err != nil {
		return err
	}

	return e.LoadFile(path)
}

// LoadFile loads variables from a dotenv file. A missing file is not an error.
func (e *Env) LoadFile(path string) error {
	if !FileExists(path) {
		return nil
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return err
	}

	for k, v := range vars {
		e.file[k] = v
	}

	return nil
}

// Lookup returns the value of name and whether it is set to a non-empty value.
func (e *Env) Lookup(name string) (string, bool) {
	if val, ok := e.base[name]; ok && val != "" {
		return val, true
	}

	if val, ok := e.file[name]; ok && val != "" {
		return val, true
	}

	return "", false
}

// envToMap converts os.Environ() format (KEY=value) to a map.
func envToMap(environ []string) map[string]string {
	result := make(map[string]string, len(environ))

	for _, env := range environ {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}

	return result
}
