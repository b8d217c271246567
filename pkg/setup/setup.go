// Package setup prepares the environment a maintenance run depends on:
// variables from .env, node tooling, a poet checkout on PATH, and git
// credentials and identity.
package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openstax/bookops/pkg/config"
	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/gitrepo"
	"github.com/openstax/bookops/pkg/logging"
	"github.com/openstax/bookops/pkg/proc"
)

// Options lists what Init sets up. Zero values skip the related step
// where noted.
type Options struct {
	// DotEnv is loaded into the process environment when it exists.
	DotEnv string
	// NodeDir gets `npm install` when it has a package.json and no
	// node_modules. Empty skips node tooling.
	NodeDir string
	// PoetDir receives a checkout of PoetRepository. Empty skips poet.
	PoetDir        string
	PoetRepository string
	// BaseURL replaces https://github.com for the poet checkout.
	BaseURL string
	// Token enables the git credential store in CredentialsDir.
	Token          string
	CredentialsDir string
	// IdentityName and IdentityEmail become the global git author when set.
	IdentityName  string
	IdentityEmail string
}

// Init runs every setup step in order.
func Init(ctx context.Context, opts Options) error {
	logger := logging.GetLogger("setup")
	done := logging.LogOperationStart(logger, "init")
	defer done()

	if opts.DotEnv != "" {
		if _, err := LoadDotEnv(opts.DotEnv); err != nil {
			return err
		}
	}
	if opts.NodeDir != "" {
		if err := InstallNodeModules(ctx, opts.NodeDir); err != nil {
			return err
		}
	}
	if opts.PoetDir != "" {
		if err := InstallPoet(ctx, opts.PoetDir, opts.PoetRepository, opts.BaseURL); err != nil {
			return err
		}
	}
	if err := gitrepo.ConfigureCredentials(ctx, opts.Token, opts.CredentialsDir); err != nil {
		return err
	}
	if opts.IdentityName != "" || opts.IdentityEmail != "" {
		if err := gitrepo.ConfigureIdentity(ctx, opts.IdentityName, opts.IdentityEmail); err != nil {
			return err
		}
	}
	return nil
}

// LoadDotEnv copies the variables of a .env file into the process
// environment, overriding existing values. It returns the variable names.
func LoadDotEnv(path string) ([]string, error) {
	vars, err := config.ReadDotEnv(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(vars))
	for k, v := range vars {
		if err := os.Setenv(k, v); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot set %s", k)
		}
		names = append(names, k)
	}
	logger := logging.GetLogger("setup")
	logger.Debug().Str("file", path).Strs("vars", names).Msg("Loaded environment file")
	return names, nil
}

// InstallNodeModules installs dir's npm dependencies once and puts their
// executables on PATH.
func InstallNodeModules(ctx context.Context, dir string) error {
	logger := logging.GetLogger("setup")
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve %s", dir)
	}
	if _, err := os.Stat(filepath.Join(abs, "package.json")); err != nil {
		logger.Debug().Str("dir", abs).Msg("No package.json, skipping npm install")
		return nil
	}

	nodeModules := filepath.Join(abs, "node_modules")
	if _, err := os.Stat(nodeModules); os.IsNotExist(err) {
		logger.Info().Str("dir", abs).Msg("Installing node modules")
		if _, err := proc.SpawnLineWithOptions(ctx, proc.Options{Dir: abs}, fmt.Sprintf("npm install %q", abs)); err != nil {
			return err
		}
	}
	return proc.PrependPath(filepath.Join(nodeModules, ".bin"))
}

// InstallPoet clones or updates repository into dir and puts dir on PATH.
func InstallPoet(ctx context.Context, dir, repository, baseURL string) error {
	if repository == "" {
		return errors.New(errors.ErrInvalidInput, "no poet repository configured")
	}
	if _, err := gitrepo.Open(ctx, gitrepo.Options{
		Path:    dir,
		Remote:  repository,
		BaseURL: baseURL,
	}); err != nil {
		return err
	}
	return proc.PrependPath(dir)
}
