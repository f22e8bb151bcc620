package vos

import (
	"regexp"
	"strings"
)

var nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// VEnv represents a virtual environment.
type VEnv interface {
	// UserHomeDir returns the current user's home directory.
	UserHomeDir() (string, error)

	// Unsetenv unsets a single environment variable.
	Unsetenv(key string) error

	// Setenv sets the value of the environment variable named by the key.
	// It returns an error, if any.
	Setenv(key, value string) error

	// LookupEnv retrieves the value of the environment variable named by the key.
	// If the variable is present in the environment the value (which may be
	// empty) is returned and the boolean is true. Otherwise the returned value
	// will be empty and the boolean will be false.
	LookupEnv(key string) (string, bool)

	// Getenv retrieves the value of the environment variable named by the key.
	// It returns the value, which will be empty if the variable is not present.
	// To distinguish between an empty value and an unset value, use LookupEnv.
	Getenv(key string) string

	// Environ returns a copy of strings representing the environment, in the
	// form "key=value".
	Environ() []string
}

// ValidName reports whether name can be used as a variable name.
func ValidName(name string) bool {
	return nameRegex.MatchString(name)
}

// SplitAssignment splits "NAME=value" on the first '='. ok is false if s
// has no '=' or the name part isn't a valid variable name.
func SplitAssignment(s string) (name, value string, ok bool) {
	name, value, found := strings.Cut(s, "=")
	if !found || !ValidName(name) {
		return "", "", false
	}
	return name, value, true
}
