package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: segment-length is read from
// KEYTUTOR_SEGMENT_LENGTH.
const EnvPrefix = "KEYTUTOR"

// NewEnv returns a viper instance reading KEYTUTOR_* variables.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Value is a setting type that can come from a flag, the environment or
// the config file.
type Value interface {
	~string | ~int | ~float64 | ~bool
}

// Apply resolves one setting into target. A changed flag wins, then the
// environment, then the file value; otherwise target keeps its default.
func Apply[T Value](flags *pflag.FlagSet, env *viper.Viper, name string, target *T, file *T) {
	if flags != nil && flags.Changed(name) {
		return
	}
	if env != nil && env.IsSet(name) {
		switch p := any(target).(type) {
		case *string:
			*p = env.GetString(name)
		case *int:
			*p = env.GetInt(name)
		case *float64:
			*p = env.GetFloat64(name)
		case *bool:
			*p = env.GetBool(name)
		}
		return
	}
	if file != nil {
		*target = *file
	}
}
