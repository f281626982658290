package utils

import (
	"fmt"
	"os"
	"strconv"
)

type Env interface {
	uint | bool | string
}

// GetEnv reads key from the environment and parses it into T. Missing
// optional keys fall back to defaultVal; parse failures panic.
func GetEnv[T Env](key string, defaultVal string, required bool) T {
	var retVal T

	val, ok := os.LookupEnv(key)
	if !ok {
		if required {
			panic(fmt.Sprintf("env %s is required", key))
		}

		val = defaultVal
	}

	switch ptr := any(&retVal).(type) {
	case *uint:
		parsedVal, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			panic(fmt.Sprintf("error: parsing env %s=%s", key, val))
		}

		*ptr = uint(parsedVal)
	case *bool:
		parsedVal, err := strconv.ParseBool(val)
		if err != nil {
			panic(fmt.Sprintf("error: parsing env %s=%s", key, val))
		}
		*ptr = parsedVal
	case *string:
		*ptr = val
	}

	return retVal
}

// LookupEnv is GetEnv for optional overrides: ok is false when key is unset.
func LookupEnv[T Env](key string) (T, bool) {
	var zero T

	if _, ok := os.LookupEnv(key); !ok {
		return zero, false
	}

	return GetEnv[T](key, "", false), true
}
