package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"framecheck/internal/config"
	"framecheck/internal/models"
	"framecheck/internal/services"
)

// hardwareFlags are the descriptor flags shared by estimate and score
type hardwareFlags struct {
	cpu    string
	gpu    string
	ram    string
	detect bool
}

func (h *hardwareFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&h.cpu, "cpu", "", `CPU descriptor, e.g. "Ryzen 5 5600X"`)
	cmd.Flags().StringVar(&h.gpu, "gpu", "", `GPU descriptor, e.g. "RTX 3060"`)
	cmd.Flags().StringVar(&h.ram, "ram", "", `memory descriptor, e.g. "16GB"`)
	cmd.Flags().BoolVar(&h.detect, "detect", false, "fill descriptors left empty from the local machine")
}

func (h *hardwareFlags) profile(ctx context.Context, source services.HardwareSource) (models.HardwareProfile, error) {
	hw := models.HardwareProfile{CPU: h.cpu, GPU: h.gpu, RAM: h.ram}
	if !h.detect {
		return hw, nil
	}

	host, err := source.Detect(ctx)
	if err != nil {
		return hw, fmt.Errorf("detect hardware: %w", err)
	}
	if hw.CPU == "" {
		hw.CPU = host.Profile.CPU
	}
	if hw.GPU == "" {
		hw.GPU = host.Profile.GPU
	}
	if hw.RAM == "" {
		hw.RAM = host.Profile.RAM
	}
	if hw.IsEmpty() {
		return hw, errors.New("detect hardware: no CPU, GPU or memory descriptor found")
	}
	return hw, nil
}

type estimateOptions struct {
	hardware    hardwareFlags
	game        string
	resolution  string
	quality     string
	catalogPath string
}

func NewEstimateCommand(source services.HardwareSource) *cobra.Command {
	o := &estimateOptions{}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the fps of a catalog game on a hardware profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd, o, source)
		},
	}
	cmd.Flags().StringVar(&o.game, "game", "", "catalog game name")
	cmd.Flags().StringVar(&o.resolution, "resolution", models.Resolution1080p, "1080p, 1440p or 4k")
	cmd.Flags().StringVar(&o.quality, "quality", models.QualityHigh, "low, medium, high or ultra")
	cmd.Flags().StringVar(&o.catalogPath, "catalog", "", "game catalog file (defaults to GAME_CATALOG_PATH)")
	o.hardware.register(cmd)
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func runEstimate(cmd *cobra.Command, o *estimateOptions, source services.HardwareSource) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	catalog, err := services.LoadCatalog(pathOr(o.catalogPath, cfg.CatalogPath))
	if err != nil {
		return err
	}
	game, ok := catalog.Game(o.game)
	if !ok {
		return fmt.Errorf("%w: %s", services.ErrGameNotFound, o.game)
	}
	hw, err := o.hardware.profile(cmd.Context(), source)
	if err != nil {
		return err
	}

	estimator := newEstimator(cfg, services.NewMemoryCache(cfg.CacheTTL), nil)
	est, err := estimator.Estimate(cmd.Context(), models.EstimationRequest{
		System:     hw,
		Game:       game.FpsProfile(),
		Resolution: o.resolution,
		Quality:    o.quality,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), est.Response())
}

type scoreOptions struct {
	hardware    hardwareFlags
	games       []string
	resolution  string
	quality     string
	targetFps   int
	catalogPath string
}

func NewScoreCommand(source services.HardwareSource) *cobra.Command {
	o := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a hardware profile against catalog games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, o, source)
		},
	}
	cmd.Flags().StringSliceVar(&o.games, "game", nil, "catalog game name, repeatable")
	cmd.Flags().StringVar(&o.resolution, "resolution", models.Resolution1080p, "1080p, 1440p or 4k")
	cmd.Flags().StringVar(&o.quality, "quality", models.QualityHigh, "low, medium, high or ultra")
	cmd.Flags().IntVar(&o.targetFps, "target-fps", services.DefaultTargetFPS, "fps each game should reach")
	cmd.Flags().StringVar(&o.catalogPath, "catalog", "", "game catalog file (defaults to GAME_CATALOG_PATH)")
	o.hardware.register(cmd)
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func runScore(cmd *cobra.Command, o *scoreOptions, source services.HardwareSource) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	catalog, err := services.LoadCatalog(pathOr(o.catalogPath, cfg.CatalogPath))
	if err != nil {
		return err
	}
	games, err := services.ResolveRequirements(catalog, o.games)
	if err != nil {
		return err
	}
	hw, err := o.hardware.profile(cmd.Context(), source)
	if err != nil {
		return err
	}

	result := services.NewCompatibilityScorer(nil).Score(hw, games, o.resolution, o.quality, o.targetFps)
	return printJSON(cmd.OutOrStdout(), result)
}

func NewDetectCommand(source services.HardwareSource) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Print the hardware profile of the local machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, err := source.Detect(cmd.Context())
			if err != nil {
				return fmt.Errorf("detect hardware: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), host)
		},
	}
}

func pathOr(path, fallback string) string {
	if path != "" {
		return path
	}
	return fallback
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
