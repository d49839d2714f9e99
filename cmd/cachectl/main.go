package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-cache/internal/config"
	"storefront-cache/internal/domain"
	"storefront-cache/internal/logger"
	"storefront-cache/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cmdTimeout        time.Duration
	warmupConcurrency int

	eventEntity string
	eventType   string
	eventID     string
	eventSlug   string
	eventData   domain.EventData
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:          "cachectl",
		Short:        "Operate the storefront cache",
		SilenceUsage: true,
	}
	c.PersistentFlags().DurationVar(&cmdTimeout, "timeout", 2*time.Minute, "Overall command timeout")

	c.AddCommand(warmCmd())
	c.AddCommand(statsCmd())
	c.AddCommand(invalidateRegionCmd())
	c.AddCommand(invalidateCmd())
	return c
}

func warmCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "warm",
		Short: "Preload hot listings, categories and home deals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStack(cmd, true, func(ctx context.Context, s *stack, log *zap.Logger) error {
				warmer := service.NewWarmupService(s.products, s.categories, s.deals, warmupConcurrency, log.Named("warmup"))
				report := warmer.Warm(ctx)
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				if len(report.Failed) > 0 {
					return fmt.Errorf("%d warmup targets failed", len(report.Failed))
				}
				return nil
			})
		},
	}
	c.Flags().IntVar(&warmupConcurrency, "concurrency", 4, "Targets loaded in parallel")
	return c
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print key counts, memory usage and breaker state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStack(cmd, false, func(ctx context.Context, s *stack, log *zap.Logger) error {
				return printJSON(cmd.OutOrStdout(), s.monitor.Snapshot(ctx))
			})
		},
	}
}

func invalidateRegionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate-region <region>",
		Short: "Delete every key of a region from both tiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStack(cmd, false, func(ctx context.Context, s *stack, log *zap.Logger) error {
				n, err := s.hybrid.InvalidateRegion(ctx, args[0])
				if err != nil {
					return err
				}
				log.Info("Region invalidated", zap.String("region", args[0]), zap.Int64("keysDeleted", n))
				return printJSON(cmd.OutOrStdout(), map[string]any{"region": args[0], "keys_deleted": n})
			})
		},
	}
}

func invalidateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "invalidate",
		Short: "Run smart invalidation for a mutation event",
		Example: `  cachectl invalidate --entity product --type update --id P1 --slug red-shoes
  cachectl invalidate --entity review --type create --product-id P1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			event := domain.InvalidationEvent{
				Type:   domain.EventType(eventType),
				Entity: domain.EntityType(eventEntity),
				Data:   eventData,
			}
			event.Data.ID = eventID
			event.Data.Slug = eventSlug
			if err := event.Validate(); err != nil {
				return err
			}
			return withStack(cmd, false, func(ctx context.Context, s *stack, log *zap.Logger) error {
				report := s.invalidation.SmartInvalidate(ctx, event)
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				if failed := report.Failed(); failed > 0 {
					return fmt.Errorf("%d invalidation branches failed", failed)
				}
				return nil
			})
		},
	}
	c.Flags().StringVar(&eventEntity, "entity", "", "Entity type (product, category, user, review, combo_deal)")
	c.Flags().StringVar(&eventType, "type", "", "Event type (create, update, delete, status_change, inventory_update, review)")
	c.Flags().StringVar(&eventID, "id", "", "Entity id")
	c.Flags().StringVar(&eventSlug, "slug", "", "Entity slug")
	c.Flags().StringVar(&eventData.CategoryID, "category-id", "", "Category id")
	c.Flags().StringVar(&eventData.ProductID, "product-id", "", "Product id")
	c.Flags().StringVar(&eventData.UserID, "user-id", "", "User id")
	_ = c.MarkFlagRequired("entity")
	_ = c.MarkFlagRequired("type")
	return c
}

// withStack loads config, wires the cache and runs fn under the command
// timeout. SIGINT and SIGTERM cancel the run.
func withStack(cmd *cobra.Command, withSources bool, fn func(ctx context.Context, s *stack, log *zap.Logger) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return err
	}
	log := logger.Get().Named("cachectl")
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cmdTimeout)
	defer cancel()

	s, err := newStack(ctx, cfg, withSources, log)
	if err != nil {
		return err
	}
	defer s.close(log)

	return fn(ctx, s, log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
