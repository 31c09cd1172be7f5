package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	accountrepo "bloom/internal/account/repository"
	accountsvc "bloom/internal/account/service"
	"bloom/internal/config"
	"bloom/internal/domain"
	"bloom/internal/infrastructure/logger"
	"bloom/internal/infrastructure/mysql"
	productrepo "bloom/internal/product/repository"
	productsvc "bloom/internal/product/service"
	"bloom/internal/product/seed"
)

// env is what every subcommand needs: config, a logger and the database.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &env{cfg: cfg, logger: zapLogger, db: db}, nil
}

func (e *env) close() {
	_ = e.db.Close()
	_ = e.logger.Sync()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bloomctl",
		Short:         "Administrative tasks for the Bloom flower shop",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newCreateAdminCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			applied, err := mysql.Migrate(cmd.Context(), e.db)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories and products from a YAML catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			catalog := productsvc.NewCatalogService(
				productrepo.NewMySQLRepository(e.db),
				productrepo.NewMySQLCategoryRepository(e.db),
				e.logger,
			)
			res, err := seed.NewSeeder(catalog, e.logger).Apply(cmd.Context(), *f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d categories and %d products, skipped %d existing\n",
				res.Categories, res.Products, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "seed/catalog.yaml", "path to the catalog YAML file")
	return cmd
}

func newCreateAdminCmd() *cobra.Command {
	var in accountsvc.NewUser
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			return createAdmin(cmd.Context(), accountrepo.NewMySQLUserRepository(e.db), e.logger, in, cmd)
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.Name, "name", "", "admin display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password, at least 8 characters")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func createAdmin(ctx context.Context, users accountsvc.UserRepository, logger *zap.Logger, in accountsvc.NewUser, cmd *cobra.Command) error {
	// Sessions are not needed to create a user.
	svc := accountsvc.NewAuthService(users, nil, logger)
	u, err := svc.CreateUser(ctx, in, domain.RoleAdmin)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", u.Email, u.ID)
	return nil
}
