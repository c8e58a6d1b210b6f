package configs

// Configurable is an option type backed by one config key.
type Configurable interface {
	ConfigKey() string
}

// Lookup returns the first configured value of an option type, or its zero
// value.
func Lookup[T Configurable](loader Loader) T {
	var zero T
	return First[T](loader, zero.ConfigKey())
}
