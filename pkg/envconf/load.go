// Package envconf fills tagged config structs from the process environment.
//
// Fields use `env:"NAME"` tags and may carry an `envDefault:"..."`. A tagged
// field without a default is required. Untagged struct fields are walked
// recursively, so service configs can embed shared sections.
package envconf

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrMissingRequired = errors.New("missing required environment variable")
	ErrInvalidValue    = errors.New("invalid environment value")
)

// DotEnvFile is read, if present, before the environment is parsed.
// Variables already set in the environment win.
var DotEnvFile = ".env"

func Load(dst any) error {
	if dst == nil {
		return errors.New("destination is nil")
	}

	err := godotenv.Load(DotEnvFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	err = env.ParseWithOptions(dst, env.Options{RequiredIfNoDef: true})
	if err != nil {
		if errors.Is(err, env.EnvVarIsNotSetError{}) || errors.Is(err, env.EmptyEnvVarError{}) {
			return fmt.Errorf("%w: %w", ErrMissingRequired, err)
		}

		if errors.Is(err, env.NotStructPtrError{}) {
			return fmt.Errorf("destination must be a non-nil pointer to a struct: %w", err)
		}

		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	return nil
}
