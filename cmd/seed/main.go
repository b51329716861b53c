package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"bolsas/internal/app"
	"bolsas/internal/config"
	"bolsas/internal/model"
	"bolsas/internal/seed"
	"bolsas/internal/service"
)

const seedTimeout = 30 * time.Second

type printStyles struct {
	header lipgloss.Style
	ok     lipgloss.Style
	skip   lipgloss.Style
	fail   lipgloss.Style
	dim    lipgloss.Style
}

func newPrintStyles() printStyles {
	return printStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		skip:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

var (
	envFile string

	admin = service.RegisterUserInput{Role: model.RoleAdmin}

	fixturesDir string
	pattern     string
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the bolsas database",
	Long: `Seed creates the initial administrator and loads announcement
definitions from YAML fixtures. Connection settings come from the same
environment variables (and .env file) as the server.`,
	SilenceUsage: true,
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create the initial administrator unless the CPF is already registered",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			styles := newPrintStyles()
			created, err := a.Users.EnsureAdmin(ctx, admin)
			if err != nil {
				fmt.Println(styles.fail.Render("✗ admin: " + err.Error()))
				return err
			}
			if created {
				fmt.Println(styles.ok.Render("✓ administrator created"))
			} else {
				fmt.Println(styles.skip.Render("• a user with this CPF already exists, nothing to do"))
			}
			return nil
		})
	},
}

var announcementsCmd = &cobra.Command{
	Use:   "announcements",
	Short: "Create announcements from YAML fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		fixtures, err := seed.LoadAnnouncements(os.DirFS(fixturesDir), pattern)
		if err != nil {
			return err
		}
		styles := newPrintStyles()
		fmt.Println(styles.header.Render(fmt.Sprintf("%d announcement fixture(s) in %s", len(fixtures), fixturesDir)))

		if dryRun {
			return report(styles, fixtures, func(f seed.Fixture) (string, error) {
				return "valid", service.PrepareDefinition(f.Announcement)
			})
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			return report(styles, fixtures, func(f seed.Fixture) (string, error) {
				created, err := a.Announcements.Create(ctx, f.Announcement)
				if err != nil {
					return "", err
				}
				return "created " + created.ID, nil
			})
		})
	},
}

func report(styles printStyles, fixtures []seed.Fixture, apply func(seed.Fixture) (string, error)) error {
	failed := 0
	for _, f := range fixtures {
		msg, err := apply(f)
		if err != nil {
			failed++
			fmt.Println(styles.fail.Render(fmt.Sprintf("✗ %s: %v", f.Path, err)))
			continue
		}
		fmt.Println(styles.ok.Render("✓ "+f.Announcement.Name) + " " + styles.dim.Render(f.Path+" "+msg))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fixture(s) failed", failed, len(fixtures))
	}
	return nil
}

func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, seedTimeout)
	defer cancel()

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	return fn(ctx, a)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file with connection settings")

	adminCmd.Flags().StringVar(&admin.FullName, "name", "Administrador", "Full name")
	adminCmd.Flags().StringVar(&admin.CPF, "cpf", "", "CPF (11 digits, punctuation allowed)")
	adminCmd.Flags().StringVar(&admin.Email, "email", "", "E-mail")
	adminCmd.Flags().StringVar(&admin.EnrollmentNumber, "enrollment", "ADMIN-0001", "Enrollment number")
	adminCmd.Flags().StringVar(&admin.Phone, "phone", "", "Phone, formatted as (99) 99999-9999")
	adminCmd.Flags().StringVar(&admin.Password, "password", "", "Initial password (must be changed on first login)")
	adminCmd.Flags().StringVar(&admin.Address.Street, "street", "", "Street")
	adminCmd.Flags().StringVar(&admin.Address.Number, "number", "s/n", "Street number")
	adminCmd.Flags().StringVar(&admin.Address.District, "district", "", "District")
	adminCmd.Flags().StringVar(&admin.Address.City, "city", "", "City")
	adminCmd.Flags().StringVar(&admin.Address.State, "state", "", "State")
	adminCmd.Flags().StringVar(&admin.Address.Zip, "zip", "", "ZIP code, formatted as 99999-999")
	for _, f := range []string{"cpf", "email", "phone", "password", "street", "district", "city", "state", "zip"} {
		adminCmd.MarkFlagRequired(f)
	}

	announcementsCmd.Flags().StringVar(&fixturesDir, "dir", "fixtures/announcements", "Directory holding the fixtures")
	announcementsCmd.Flags().StringVar(&pattern, "files", seed.DefaultPattern, "Glob (doublestar syntax) relative to --dir")
	announcementsCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only validate the fixtures")

	rootCmd.AddCommand(adminCmd, announcementsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
