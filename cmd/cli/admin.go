package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/aihub/backend/internal/kernel"
	"github.com/zfogg/aihub/backend/internal/seed"
	"github.com/zfogg/aihub/backend/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and unique indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bootstrap migrates before wiring anything else
		return withKernel(cmd.Context(), func(k *kernel.Kernel) error {
			return printResult(map[string]bool{"migrated": true}, "✅ Database migrated")
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the catalog with fake data",
	Long: `Create fake users, categories, tags, tools, ratings, shares and favorites,
then recompute every statistic.

Every seeded account uses the password "` + seed.DefaultPassword + `".

Examples:
  aihub seed
  aihub seed --tools 500 --users 200
  aihub seed --clean`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := seed.DefaultOptions()
		opts.Tools, _ = cmd.Flags().GetInt("tools")
		opts.Users, _ = cmd.Flags().GetInt("users")
		clean, _ := cmd.Flags().GetBool("clean")

		return withKernel(cmd.Context(), func(k *kernel.Kernel) error {
			seeder := seed.NewSeeder(k.Store())
			if clean {
				if err := seeder.Clean(cmd.Context()); err != nil {
					return err
				}
				return printResult(map[string]bool{"cleaned": true}, "🧹 Database cleaned")
			}

			report, err := seeder.Seed(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if k.Search().Enabled() {
				if _, err := k.Search().Reindex(cmd.Context()); err != nil {
					return fmt.Errorf("seeded, but failed to reindex: %w", err)
				}
			}
			return printResult(report, fmt.Sprintf(
				"🌱 Seeded %d users, %d tools, %d ratings, %d shares, %d favorites",
				report.Users, report.Tools, report.Ratings, report.Shares, report.Favorites,
			))
		})
	},
}

var recomputeStatsCmd = &cobra.Command{
	Use:   "recompute-stats",
	Short: "Rebuild rating stats, share stats, likes and tag counts",
	Long: `Recompute the derived statistics from the underlying records.

Examples:
  aihub recompute-stats
  aihub recompute-stats --tool 6f1c... --tool 9a2b...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		toolIDs, _ := cmd.Flags().GetStringSlice("tool")
		return withKernel(cmd.Context(), func(k *kernel.Kernel) error {
			summary, err := k.Engine().RecomputeAll(cmd.Context(), toolIDs...)
			if err != nil {
				return err
			}
			// ratings and likes are indexed sort fields
			if k.Search().Enabled() {
				if _, err := k.Search().Reindex(cmd.Context()); err != nil {
					return fmt.Errorf("recomputed, but failed to reindex: %w", err)
				}
			}
			return printResult(summary, fmt.Sprintf("📊 Recomputed stats for %d tools and %d tags", summary.Tools, summary.Tags))
		})
	},
}

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin <username>",
	Short: "Grant or revoke admin rights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		revoke, _ := cmd.Flags().GetBool("revoke")
		return withKernel(cmd.Context(), func(k *kernel.Kernel) error {
			return setAdmin(cmd.Context(), k.Store(), args[0], !revoke)
		})
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push every tool into the Elasticsearch index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKernel(cmd.Context(), func(k *kernel.Kernel) error {
			if !k.Search().Enabled() {
				return fmt.Errorf("ELASTICSEARCH_URL is not set or Elasticsearch is unreachable")
			}
			n, err := k.Search().Reindex(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(map[string]int{"indexed": n}, fmt.Sprintf("🔎 Indexed %d tools", n))
		})
	},
}

func init() {
	defaults := seed.DefaultOptions()
	seedCmd.Flags().Int("tools", defaults.Tools, "Number of tools to create")
	seedCmd.Flags().Int("users", defaults.Users, "Number of users to create")
	seedCmd.Flags().Bool("clean", false, "Delete all data instead of seeding")

	recomputeStatsCmd.Flags().StringSlice("tool", nil, "Only recompute these tool IDs (repeatable)")

	promoteAdminCmd.Flags().Bool("revoke", false, "Remove admin rights instead of granting them")
}

func setAdmin(ctx context.Context, s *store.Store, username string, admin bool) error {
	username = strings.TrimSpace(username)
	user, err := s.Users.FindOne(ctx, store.EqFold("username", username))
	if err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}

	if user.IsAdmin == admin {
		return printResult(user, fmt.Sprintf("ℹ️  %s already has is_admin=%t", user.Username, admin))
	}
	if err := s.Users.SetColumns(ctx, user.ID, map[string]interface{}{"is_admin": admin}); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	user.IsAdmin = admin

	verb := "promoted to admin"
	if !admin {
		verb = "no longer an admin"
	}
	return printResult(user, fmt.Sprintf("✅ %s is %s", user.Username, verb))
}
