package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCollisionPolicy indicates an unsupported collision policy
	ErrInvalidCollisionPolicy = errors.New("invalid collision policy")

	// ErrEmptyInclude indicates no include patterns are configured
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrInvalidDebounce indicates an invalid watch debounce interval
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrInvalidAlias indicates a malformed rename alias
	ErrInvalidAlias = errors.New("invalid rename alias")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	policy := strings.ToLower(cfg.Compare.CollisionPolicy)
	if policy != CollisionWarn && policy != CollisionFail {
		errs = append(errs, fmt.Errorf("%w: must be '%s' or '%s', got '%s'",
			ErrInvalidCollisionPolicy, CollisionWarn, CollisionFail, cfg.Compare.CollisionPolicy))
	}

	if len(cfg.Paths.Include) == 0 {
		errs = append(errs, ErrEmptyInclude)
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms must be >= 0, got %d",
			ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	for lang, aliases := range cfg.Aliases {
		for _, alias := range aliases {
			if alias.From == "" || alias.To == "" {
				errs = append(errs, fmt.Errorf("%w: %s alias needs both 'from' and 'to'",
					ErrInvalidAlias, lang))
				continue
			}
			if alias.From == alias.To {
				errs = append(errs, fmt.Errorf("%w: %s alias maps %q to itself",
					ErrInvalidAlias, lang, alias.From))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
