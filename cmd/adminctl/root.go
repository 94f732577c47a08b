package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/pkg/client"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errReported marks failures whose message was already printed.
var errReported = errors.New("reported")

type app struct {
	out, errOut io.Writer
	server      string
	sessionPath string
	timeout     time.Duration

	// readPassword is swapped in tests.
	readPassword func() (string, error)
}

func (a *app) client() (*client.Client, error) {
	sess, err := client.LoadSession(a.sessionPath)
	if err != nil {
		return nil, err
	}
	return client.New(a.server, sess, client.WithSessionSaver(func(s *client.Session) error {
		return s.Save(a.sessionPath)
	})), nil
}

func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "mezunlar", "session.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{
		out:    out,
		errOut: errOut,
		readPassword: func() (string, error) {
			b, err := term.ReadPassword(int(syscall.Stdin))
			return string(b), err
		},
	}

	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "İSTÜN Mezunlar Ağı yönetim aracı",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if !cmd.Flags().Changed("server") {
				a.server = envOr("MEZUNLAR_API_URL", a.server)
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.server, "server", "http://localhost:8080", "API base URL (env MEZUNLAR_API_URL)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", defaultSessionPath(), "session file")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 15*time.Second, "request timeout")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.pendingCmd(),
		a.approveCmd(),
		a.rejectCmd(),
		a.adminsCmd(),
		a.setRoleCmd(),
		a.removeRoleCmd(),
		a.usersCmd(),
		a.rosterCmd(),
	)
	return root
}

// ─── Session ────────────────────────────────────────────────────────

func (a *app) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <e-posta|kullanıcı adı>",
		Short: "Yönetici olarak giriş yap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			fmt.Fprint(a.errOut, "Şifre: ")
			password, err := a.readPassword()
			fmt.Fprintln(a.errOut)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()
			resp, err := c.Login(ctx, args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Giriş yapıldı: %s (%s)\n", resp.User.Email, resp.User.AdminRole)
			return nil
		},
	}
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Oturumu kapat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := c.Logout(ctx); err != nil {
				fmt.Fprintln(a.errOut, "uyarı:", err)
			}
			if err := client.ClearSession(a.sessionPath); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Oturum kapatıldı.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Oturumdaki hesabı göster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			me, err := c.Me(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s>\nRol: %s\nYetkiler: %s\n",
				me.User.FullName(), me.User.Email, me.User.AdminRole, strings.Join(me.Permissions, ", "))
			return nil
		},
	}
}

// ─── Approval ───────────────────────────────────────────────────────

func (a *app) pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Onay bekleyen başvuruları listele",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var users []model.User
			c, err := a.client()
			if err == nil {
				ctx, cancel := a.ctx(cmd)
				defer cancel()
				users, err = c.Pending(ctx)
			}
			renderUsers(a.out, users, true)
			return a.banner(err)
		},
	}
}

func (a *app) approveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <kullanıcı-id>",
		Short: "Başvuruyu onayla",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("geçersiz kullanıcı kimliği: %s", args[0])
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			u, err := c.Approve(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Onaylandı: %s <%s>\n", u.FullName(), u.Email)
			return nil
		},
	}
}

func (a *app) rejectCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reject <kullanıcı-id> --reason <gerekçe>",
		Short: "Başvuruyu reddet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("geçersiz kullanıcı kimliği: %s", args[0])
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			u, err := c.Reject(ctx, id, reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Reddedildi: %s <%s>\n", u.FullName(), u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "ret gerekçesi (zorunlu)")
	return cmd
}

func (a *app) usersCmd() *cobra.Command {
	var opts client.ListOptions
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Kayıtlı kullanıcıları listele",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var users []model.User
			var page *client.Page[model.User]
			c, err := a.client()
			if err == nil {
				ctx, cancel := a.ctx(cmd)
				defer cancel()
				page, err = c.Users(ctx, opts)
			}
			if page != nil {
				users = page.Items
			}
			renderUsers(a.out, users, false)
			if page != nil && page.HasMore {
				fmt.Fprintf(a.out, "\nDevamı için: --page %d\n", page.Page+1)
			}
			return a.banner(err)
		},
	}
	cmd.Flags().IntVar(&opts.Page, "page", 1, "sayfa")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "sayfa boyutu (en fazla 100)")
	cmd.Flags().StringVar(&opts.Status, "status", "all", "pending, approved, rejected veya all")
	return cmd
}

func (a *app) rosterCmd() *cobra.Command {
	var pageNum, limit int
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Onaylı mezun listesini göster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var profiles []model.PublicProfile
			var page *client.Page[model.PublicProfile]
			c, err := a.client()
			if err == nil {
				ctx, cancel := a.ctx(cmd)
				defer cancel()
				page, err = c.Alumni(ctx, pageNum, limit)
			}
			if page != nil {
				profiles = page.Items
			}
			renderRoster(a.out, profiles)
			return a.banner(err)
		},
	}
	cmd.Flags().IntVar(&pageNum, "page", 1, "sayfa")
	cmd.Flags().IntVar(&limit, "limit", 20, "sayfa boyutu (en fazla 100)")
	return cmd
}

// ─── Role management ────────────────────────────────────────────────

func (a *app) adminsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "admins",
		Short: "Yönetici rolüne sahip hesapları listele",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var admins []model.AdminSummary
			c, err := a.client()
			if err == nil {
				ctx, cancel := a.ctx(cmd)
				defer cancel()
				admins, err = c.ListAdmins(ctx)
			}
			renderAdmins(a.out, admins)
			return a.banner(err)
		},
	}
}

func (a *app) setRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <e-posta> <content_admin|super_admin>",
		Short: "Hesaba yönetici rolü ata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			u, err := c.SetRole(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s artık %s rolünde.\n", u.Email, u.AdminRole)
			return nil
		},
	}
}

func (a *app) removeRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-role <e-posta>",
		Short: "Hesabın yönetici rolünü kaldır",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			u, err := c.RemoveRole(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s için yönetici rolü kaldırıldı.\n", u.Email)
			return nil
		},
	}
}

// banner prints a listing failure under the (empty) table.
func (a *app) banner(err error) error {
	if err == nil {
		return nil
	}
	fmt.Fprintf(a.errOut, "\n!! Liste alınamadı: %v\n", err)
	return errReported
}
