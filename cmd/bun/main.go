package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/Gr33nOps/VTcade/config"
	"github.com/Gr33nOps/VTcade/db/bundb"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	// Load configuration for database connection ONLY
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		log.Fatal("postgres.dsn (or DATABASE_URL) is required for migrations")
	}

	db, err := bundb.Open(context.Background(), cfg.Postgres, nil)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cliApp := &cli.App{
		Name:  "bun",
		Usage: "manage leaderboard database migrations",
		Commands: []*cli.Command{
			newMultiModuleDBCommand(bundb.Migrators(db)),
		},
	}

	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Fatal(err)
	}
}

func newMultiModuleDBCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return forEachModule(migrators, func(name string, m *migrate.Migrator) error {
						fmt.Printf("Initializing migrations for module: %s\n", name)
						return m.Init(c.Context)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "apply pending migrations under the migration lock",
				Action: func(c *cli.Context) error {
					return forEachModule(migrators, func(name string, m *migrate.Migrator) error {
						if err := m.Lock(c.Context); err != nil {
							return err
						}
						defer m.Unlock(c.Context) //nolint:errcheck

						group, err := m.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("%s: no new migrations\n", name)
						} else {
							fmt.Printf("%s: migrated to %s\n", name, group)
						}
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return forEachModule(migrators, func(name string, m *migrate.Migrator) error {
						if err := m.Lock(c.Context); err != nil {
							return err
						}
						defer m.Unlock(c.Context) //nolint:errcheck

						group, err := m.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("%s: no groups to roll back\n", name)
						} else {
							fmt.Printf("%s: rolled back %s\n", name, group)
						}
						return nil
					})
				},
			},
			{
				Name:  "unlock",
				Usage: "release a migration lock left by a crashed run",
				Action: func(c *cli.Context) error {
					return forEachModule(migrators, func(_ string, m *migrate.Migrator) error {
						return m.Unlock(c.Context)
					})
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					m, name, err := pickModule(c, migrators)
					if err != nil {
						return err
					}
					mf, err := m.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					m, name, err := pickModule(c, migrators)
					if err != nil {
						return err
					}
					files, err := m.CreateSQLMigrations(c.Context, name)
					if err != nil {
						return err
					}
					for _, mf := range files {
						fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					}
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return forEachModule(migrators, func(name string, m *migrate.Migrator) error {
						ms, err := m.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("%s:\n  applied:   %s\n  unapplied: %s\n", name, ms.Applied(), ms.Unapplied())
						return nil
					})
				},
			},
		},
	}
}

// forEachModule runs fn for every module in name order and stops at the first error.
func forEachModule(migrators map[string]*migrate.Migrator, fn func(name string, m *migrate.Migrator) error) error {
	names := make([]string, 0, len(migrators))
	for name := range migrators {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := fn(name, migrators[name]); err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
	}
	return nil
}

func pickModule(c *cli.Context, migrators map[string]*migrate.Migrator) (*migrate.Migrator, string, error) {
	module := c.Args().First()
	m, ok := migrators[module]
	if !ok {
		return nil, "", fmt.Errorf("invalid module name: %q", module)
	}
	name := strings.Join(c.Args().Tail(), "_")
	if name == "" {
		return nil, "", fmt.Errorf("migration name is required")
	}
	return m, name, nil
}
