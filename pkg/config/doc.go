// Package config loads bookops configuration.
//
// Sources are layered, later ones overriding earlier ones:
//   - embedded defaults (embedded/defaults.toml)
//   - bookops.toml in the tool root, or the file given with --config
//   - the .env file in the tool root
//   - environment variables with the BOOKOPS_ prefix, where a double
//     underscore separates sections (BOOKOPS_PLONE__BASE_URL), plus the
//     legacy ABL_URL, GITHUB_TOKEN, PLONE_USER and PLONE_PASSWORD
//
// Relative paths in the result are resolved against the tool root.
package config
