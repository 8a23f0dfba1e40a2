package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/poem-comments/internal/config"
	"github.com/pribylovaa/poem-comments/internal/content"
	"github.com/pribylovaa/poem-comments/internal/metrics"
	"github.com/pribylovaa/poem-comments/internal/models"
	"github.com/pribylovaa/poem-comments/internal/service"
	csmongo "github.com/pribylovaa/poem-comments/internal/storage/mongo"
)

var (
	configPath  string
	jsonOutput  bool
	concurrency int
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "comments-audit TYPE:ID [TYPE:ID...]",
	Short: "Check comment hierarchy invariants for the given targets",
	Long: `Reads every comment of each target as stored and reports hierarchy violations:
dangling or cross-target parents, non-canonical parent encodings, level/path drift.
Nothing is modified.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := parseTargets(args)
		if err != nil {
			return err
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		ctx := cmd.Context()

		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		store, err := csmongo.New(dbCtx, cfg)
		cancel()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close(context.Background()) }()

		svc := service.New(store, content.Permissive{}, *cfg, metrics.New(prometheus.NewRegistry()))

		reports, err := audit(ctx, svc, targets, concurrency)
		if err != nil {
			return err
		}

		if jsonOutput {
			err = renderJSON(cmd.OutOrStdout(), reports)
		} else {
			err = renderText(cmd.OutOrStdout(), reports)
		}
		if err != nil {
			return err
		}

		var total int
		for _, r := range reports {
			total += len(r.Violations)
		}
		if total > 0 {
			return fmt.Errorf("%w: %d violation(s)", service.ErrInconsistentState, total)
		}

		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print reports as JSON")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 4, "targets validated in parallel")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
}

// Validator — то, что нужно команде от сервиса.
type Validator interface {
	Validate(ctx context.Context, target models.Target) ([]models.Violation, error)
}

// Report — результат проверки одной цели.
type Report struct {
	TargetType models.TargetType  `json:"targetType"`
	TargetID   string             `json:"targetId"`
	Violations []models.Violation `json:"violations"`
}

// parseTargets разбирает аргументы вида type:id.
func parseTargets(args []string) ([]models.Target, error) {
	out := make([]models.Target, 0, len(args))
	for _, a := range args {
		typ, id, ok := strings.Cut(a, ":")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("bad target %q: want TYPE:ID", a)
		}

		t := models.Target{ID: id, Type: models.TargetType(typ)}.Normalize()
		if !t.Type.Valid() {
			return nil, fmt.Errorf("bad target %q: unknown type %q", a, t.Type)
		}
		out = append(out, t)
	}

	return out, nil
}

// audit проверяет цели параллельно; порядок отчётов совпадает с порядком целей.
// Первая ошибка отменяет остальные проверки.
func audit(ctx context.Context, v Validator, targets []models.Target, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 1
	}

	reports := make([]Report, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, t := range targets {
		g.Go(func() error {
			violations, err := v.Validate(gctx, t)
			if err != nil {
				return fmt.Errorf("%s:%s: %w", t.Type, t.ID, err)
			}
			if violations == nil {
				violations = []models.Violation{}
			}

			reports[i] = Report{TargetType: t.Type, TargetID: t.ID, Violations: violations}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reports, nil
}

func renderJSON(w io.Writer, reports []Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func renderText(w io.Writer, reports []Report) error {
	for _, r := range reports {
		if len(r.Violations) == 0 {
			if _, err := fmt.Fprintf(w, "%s:%s  ok\n", r.TargetType, r.TargetID); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "%s:%s  %d violation(s)\n", r.TargetType, r.TargetID, len(r.Violations)); err != nil {
			return err
		}
		for _, v := range r.Violations {
			id := "-"
			if !v.CommentID.IsZero() {
				id = v.CommentID.String()
			}
			if _, err := fmt.Fprintf(w, "  %-26s %-24s %s\n", v.Kind, id, v.Detail); err != nil {
				return err
			}
		}
	}

	return nil
}
