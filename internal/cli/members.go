package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/members"
	"github.com/spf13/cobra"
)

func (a *app) memberAdmin(cmd *cobra.Command) (*members.Admin, error) {
	if err := a.load(cmd); err != nil {
		return nil, err
	}
	p := a.cfg.Plone
	var dir members.Directory = members.NewPlone(p.BaseURL, p.User, p.Password)
	if a.flags.dryRun {
		dir = members.DryRun(dir)
	}
	return members.NewAdmin(dir, cmd.OutOrStdout(), time.Duration(p.Throttle)), nil
}

// memberRange parses the inclusive <start> <end> arguments.
func memberRange(startArg, endArg string) (int, int, error) {
	start, err := strconv.Atoi(startArg)
	if err != nil {
		return 0, 0, errors.Wrapf(err, errors.ErrInvalidInput, "invalid start index %q", startArg)
	}
	end, err := strconv.Atoi(endArg)
	if err != nil {
		return 0, 0, errors.Wrapf(err, errors.ErrInvalidInput, "invalid end index %q", endArg)
	}
	return start, end, nil
}

func newMembersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "members",
		Short:   MsgMembersShort,
		Long:    MsgMembersLong,
		Example: MsgMembersExample,
		GroupID: "misc",
	}
	cmd.AddCommand(newMembersCountCmd(a))
	cmd.AddCommand(newMembersExportCmd(a))
	cmd.AddCommand(newMembersRolesCmd(a))
	cmd.AddCommand(newMembersDenyCmd(a))
	return cmd
}

func newMembersCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count [file]",
		Short: MsgMembersCount,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := a.memberAdmin(cmd)
			if err != nil {
				return err
			}
			n, err := admin.Count(cmd.Context())
			if err != nil {
				return err
			}
			a.printer.Println(fmt.Sprintf(MsgMemberCount, n))
			if len(args) == 1 {
				return members.WriteCount(args[0], n)
			}
			return nil
		},
	}
}

func newMembersExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <csv-file> <start> <end>",
		Short: MsgMembersExport,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := memberRange(args[1], args[2])
			if err != nil {
				return err
			}
			admin, err := a.memberAdmin(cmd)
			if err != nil {
				return err
			}
			n, err := admin.Export(cmd.Context(), start, end, args[0])
			if err != nil {
				return err
			}
			a.printer.Success(fmt.Sprintf(MsgExported, n, args[0]))
			return nil
		},
	}
}

func newMembersRolesCmd(a *app) *cobra.Command {
	var csvName string
	cmd := &cobra.Command{
		Use:   "roles <start> <end>",
		Short: MsgMembersRoles,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := memberRange(args[0], args[1])
			if err != nil {
				return err
			}
			admin, err := a.memberAdmin(cmd)
			if err != nil {
				return err
			}
			listed, err := admin.PrintRoles(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			if csvName == "" {
				return nil
			}

			rows := make([]map[string]string, 0, len(listed))
			for _, m := range listed {
				rows = append(rows, map[string]string{"id": m.ID, "roles": strings.Join(m.Roles, " ")})
			}
			name := csvName
			if !filepath.IsAbs(name) {
				name = filepath.Join(a.cfg.Plone.OutputDir, name)
			}
			path, err := members.WriteCSV([]string{"id", "roles"}, rows, name, true, time.Now())
			if err != nil {
				return err
			}
			a.printer.Println(fmt.Sprintf(MsgCSVWritten, path))
			return nil
		},
	}
	cmd.Flags().StringVar(&csvName, "csv", "", MsgFlagRolesCSV)
	return cmd
}

func newMembersDenyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deny <access-list> <start> <end>",
		Short: MsgMembersDeny,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := memberRange(args[1], args[2])
			if err != nil {
				return err
			}
			accessList, err := members.ReadAccessList(args[0])
			if err != nil {
				return err
			}
			admin, err := a.memberAdmin(cmd)
			if err != nil {
				return err
			}
			denied, err := admin.Deny(cmd.Context(), accessList, start, end)
			if err != nil {
				return err
			}
			a.printer.Success(fmt.Sprintf(MsgDenied, denied))
			if a.flags.dryRun {
				a.printer.Println(MsgDryRunNotice)
			}
			return nil
		},
	}
}
