package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "OpenStax book repository maintenance"
	MsgPrepShort        = "Clean, prepare and optionally push every approved book"
	MsgInitShort        = "Install tooling and configure git credentials"
	MsgBooksShort       = "List the approved book repositories"
	MsgOrphansShort     = "Remove files a book no longer references"
	MsgMetaShort        = "Print the metadata of a book"
	MsgReadmeShort      = "Write the README and repository settings of a book"
	MsgLicenseShort     = "Check a book's LICENSE against its metadata"
	MsgBranchesShort    = "Prune the stale branches and tags of a book"
	MsgURIsShort        = "List legacy archive URIs of a book and its pages"
	MsgMembersShort     = "Administer legacy CMS members"
	MsgMembersCount     = "Write the number of members to a file"
	MsgMembersExport    = "Export a range of members to CSV"
	MsgMembersRoles     = "Print the roles of a range of members"
	MsgMembersDeny      = "Remove all roles from members outside an access list"
	MsgConfigShort      = "Print the effective configuration"
	MsgVersionShort     = "Print version information"
	MsgCompletionShort  = "Generate shell completion script"
	MsgManShort         = "Generate the man page"
	MsgURIsSuccess      = "uris generated successfully"
	MsgMemberCount      = "Member count: %d"
	MsgOrphansRemoved   = "Removed %d orphaned file(s) from %s"
	MsgOrphansFound     = "Would remove %d orphaned file(s) from %s"
	MsgReadmeWritten    = "Wrote README and repository settings to %s"
	MsgLicenseStatus    = "LICENSE %s (%s)"
	MsgExported         = "Exported %d member(s) to %s"
	MsgDenied           = "Removed roles from %d member(s)"
	MsgCSVWritten       = "Saving csv file to %s"
	MsgBooksFailed      = "%d of %d book(s) failed"
	MsgNoCommand        = "no command specified"
	MsgDryRunNotice     = "DRY RUN MODE - nothing was pushed or written remotely"
	MsgPushModeArgument = "unknown mode %q (use p, push or sync)"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun     = "Preview changes without pushing or writing remotely"
	MsgFlagConfig     = "Config file (default <root>/bookops.toml)"
	MsgFlagRoot       = "Tool root holding bookops.toml, .env and tool checkouts (default $BOOKOPS_ROOT or .)"
	MsgFlagFormat     = "Output format: auto, terminal, text, json or yaml"
	MsgFlagPush       = "Delete stale branches and tags and push (same as the push argument)"
	MsgFlagJobs       = "Number of books processed at once (default from config)"
	MsgFlagBook       = "Only process this book repository (repeatable)"
	MsgFlagSkipSetup  = "Do not install tooling or configure git before the run"
	MsgFlagPreview    = "Render the README instead of writing it"
	MsgFlagRolesCSV   = "Also save the roles to <name>-YYYYMMDD.csv"
	MsgFlagDefaults   = "Print the embedded defaults instead of the effective configuration"
	MsgFlagBranchPush = "Delete the branches and tags instead of listing them"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/prep-long.txt
	msgPrepLongRaw string
	MsgPrepLong    = strings.TrimSpace(msgPrepLongRaw)

	//go:embed msgs/prep-example.txt
	msgPrepExampleRaw string
	MsgPrepExample    = strings.TrimRight(msgPrepExampleRaw, "\n")

	//go:embed msgs/members-long.txt
	msgMembersLongRaw string
	MsgMembersLong    = strings.TrimSpace(msgMembersLongRaw)

	//go:embed msgs/members-example.txt
	msgMembersExampleRaw string
	MsgMembersExample    = strings.TrimRight(msgMembersExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
