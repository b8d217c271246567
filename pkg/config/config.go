package config

import "time"

// Config is the effective bookops configuration.
type Config struct {
	// Root is the tool root holding licenses, static resources, poet and
	// the approved book list.
	Root string `koanf:"root" toml:"root"`
	// Org owns every book repository.
	Org string `koanf:"org" toml:"org"`
	// Branch is the working branch of every book repository.
	Branch string `koanf:"branch" toml:"branch"`
	// WorkDir is where book repositories are cloned.
	WorkDir string `koanf:"workdir" toml:"workdir"`
	// Jobs is the number of books processed concurrently.
	Jobs int `koanf:"jobs" toml:"jobs"`

	ABL      ABL      `koanf:"abl" toml:"abl"`
	GitHub   GitHub   `koanf:"github" toml:"github"`
	Identity Identity `koanf:"identity" toml:"identity"`
	Poet     Poet     `koanf:"poet" toml:"poet"`
	RepoPrep RepoPrep `koanf:"repo_prep" toml:"repo_prep"`
	Archive  Archive  `koanf:"archive" toml:"archive"`
	Plone    Plone    `koanf:"plone" toml:"plone"`
}

// ABL locates the approved book list.
type ABL struct {
	URL  string `koanf:"url" toml:"url"`
	Path string `koanf:"path" toml:"path"`
}

// GitHub holds access settings for book repositories.
type GitHub struct {
	Token          string `koanf:"token" toml:"token"`
	BaseURL        string `koanf:"base_url" toml:"base_url"`
	CredentialsDir string `koanf:"credentials_dir" toml:"credentials_dir"`
}

// Identity is the git author of maintenance commits.
type Identity struct {
	Name  string `koanf:"name" toml:"name"`
	Email string `koanf:"email" toml:"email"`
}

// Poet configures the content validation tool.
type Poet struct {
	Command    string `koanf:"command" toml:"command"`
	Repository string `koanf:"repository" toml:"repository"`
	Dir        string `koanf:"dir" toml:"dir"`
}

// RepoPrep locates the resources used to prepare book repositories.
type RepoPrep struct {
	// Dir holds the node tooling installed during setup.
	Dir string `koanf:"dir" toml:"dir"`
	// StaticDir holds README templates and repo-settings.
	StaticDir   string `koanf:"static_dir" toml:"static_dir"`
	LicensesDir string `koanf:"licenses_dir" toml:"licenses_dir"`
	Install     bool   `koanf:"install" toml:"install"`
}

// Archive is the legacy content archive used to generate book URIs.
type Archive struct {
	Host      string `koanf:"host" toml:"host"`
	OutputDir string `koanf:"output_dir" toml:"output_dir"`
}

// Plone is the legacy CMS holding member accounts.
type Plone struct {
	BaseURL   string   `koanf:"base_url" toml:"base_url"`
	User      string   `koanf:"user" toml:"user"`
	Password  string   `koanf:"password" toml:"password"`
	Throttle  Duration `koanf:"throttle" toml:"throttle"`
	OutputDir string   `koanf:"output_dir" toml:"output_dir"`
}

// Duration is a time.Duration written as text ("10ms") in config files.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
