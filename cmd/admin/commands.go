package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"meetingtracker-be/internal/access"
	"meetingtracker-be/internal/attendance"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"
	"meetingtracker-be/internal/services"
	"meetingtracker-be/internal/utils"

	"github.com/spf13/cobra"
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type meetingFinder interface {
	Find(ctx context.Context, f repository.MeetingFilter) ([]models.Meeting, error)
}

// adminDeps holds what the subcommands need. syncer is nil when no
// spreadsheet is configured.
type adminDeps struct {
	users        userStore
	meetings     meetingFinder
	syncer       services.Syncer
	readPassword func(fd int) ([]byte, error)
	out          io.Writer
}

type depsOpener func(ctx context.Context) (*adminDeps, func(), error)

const commandTimeout = 2 * time.Minute

// withDeps opens the dependencies for one command run and closes them after.
func withDeps(open depsOpener, run func(ctx context.Context, deps *adminDeps) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		deps, closeFn, err := open(ctx)
		if err != nil {
			return err
		}
		defer closeFn()
		return run(ctx, deps)
	}
}

func newRootCommand(open depsOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Meeting tracker operator tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCreateUserCommand(open))
	root.AddCommand(newResetPasswordCommand(open))
	root.AddCommand(newSyncSheetsCommand(open))
	root.AddCommand(newReportCommand(open))
	return root
}

func promptPassword(deps *adminDeps) (string, error) {
	fmt.Fprint(deps.out, "Enter password: ")
	pwd, err := deps.readPassword(int(syscall.Stdin))
	fmt.Fprintln(deps.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(pwd) < 6 {
		return "", errors.New("password must be at least 6 characters")
	}
	return string(pwd), nil
}

func newCreateUserCommand(open depsOpener) *cobra.Command {
	var (
		email string
		name  string
		role  string
		zones []string
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account; the password is prompted",
		Long: `Create an account. Use it to bootstrap the first admin:

  admin create-user --email admin@example.com --name "Admin" --role admin`,
	}
	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&role, "role", string(access.RoleMember), "admin, district_leader, zone_leader or member")
	cmd.Flags().StringSliceVar(&zones, "zones", nil, "zone names the user acts on")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	cmd.RunE = withDeps(open, func(ctx context.Context, deps *adminDeps) error {
		r := access.Role(strings.ToLower(strings.TrimSpace(role)))
		if !r.Valid() {
			return fmt.Errorf("unknown role %q", role)
		}
		pwd, err := promptPassword(deps)
		if err != nil {
			return err
		}
		hash, err := utils.HashPassword(pwd)
		if err != nil {
			return err
		}

		user := &models.User{
			Email:    strings.ToLower(strings.TrimSpace(email)),
			Password: hash,
			Name:     utils.NormalizeName(name),
			Role:     string(r),
			Active:   true,
		}
		for _, z := range zones {
			if z = utils.NormalizeName(z); z != "" {
				user.Zones = append(user.Zones, z)
			}
		}
		if err := deps.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("a user with email %s already exists", user.Email)
			}
			return err
		}
		fmt.Fprintf(deps.out, "created %s (%s) id=%s personId=%s\n", user.Email, user.Role, user.ID.Hex(), user.PersonID)
		return nil
	})
	return cmd
}

func newResetPasswordCommand(open depsOpener) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an account and revoke its sessions",
	}
	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	_ = cmd.MarkFlagRequired("email")

	cmd.RunE = withDeps(open, func(ctx context.Context, deps *adminDeps) error {
		user, err := deps.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("no user with email %s", email)
			}
			return err
		}
		pwd, err := promptPassword(deps)
		if err != nil {
			return err
		}
		hash, err := utils.HashPassword(pwd)
		if err != nil {
			return err
		}
		if err := deps.users.UpdatePassword(ctx, user.ID.Hex(), hash); err != nil {
			return err
		}
		fmt.Fprintf(deps.out, "password updated for %s\n", user.Email)
		return nil
	})
	return cmd
}

func newSyncSheetsCommand(open depsOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-sheets",
		Short: "Import the legacy attendance spreadsheet once",
		RunE: withDeps(open, func(ctx context.Context, deps *adminDeps) error {
			if deps.syncer == nil {
				return services.ErrSheetsDisabled
			}
			res, err := deps.syncer.Sync(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.out, "rows read: %d, skipped: %d, meetings updated: %d, kept: %d\n",
				res.RowsRead, res.RowsSkipped, res.MeetingsUpdated, res.MeetingsKept)
			return nil
		}),
	}
}

func newReportCommand(open depsOpener) *cobra.Command {
	var start, end, zone string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the attendance report as JSON",
	}
	cmd.Flags().StringVar(&start, "start", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&zone, "zone", attendance.AllZones, "zone name or all")

	cmd.RunE = withDeps(open, func(ctx context.Context, deps *adminDeps) error {
		q := attendance.Query{Zone: zone}
		filter := repository.MeetingFilter{KeepMalformedDates: true}
		if start != "" {
			d, err := attendance.ParseDate(start)
			if err != nil {
				return err
			}
			q.Start, filter.Start = &d, attendance.FormatDate(d)
		}
		if end != "" {
			d, err := attendance.ParseDate(end)
			if err != nil {
				return err
			}
			q.End, filter.End = &d, attendance.FormatDate(d)
		}
		if z := strings.TrimSpace(zone); z != "" && !strings.EqualFold(z, attendance.AllZones) {
			filter.Zones = []string{z}
		}

		meetings, err := deps.meetings.Find(ctx, filter)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(deps.out)
		enc.SetIndent("", "  ")
		return enc.Encode(attendance.Aggregate(q, meetings))
	})
	return cmd
}
