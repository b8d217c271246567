package config

import (
	"github.com/openstax/bookops/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

const masked = "********"

// Masked returns a copy of cfg with secrets replaced by asterisks.
func Masked(cfg *Config) Config {
	view := *cfg
	if view.GitHub.Token != "" {
		view.GitHub.Token = masked
	}
	if view.Plone.Password != "" {
		view.Plone.Password = masked
	}
	return view
}

// Dump renders cfg as TOML with secrets masked.
func Dump(cfg *Config) ([]byte, error) {
	out, err := toml.Marshal(Masked(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot render configuration")
	}
	return out, nil
}
