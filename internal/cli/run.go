package cli

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/spf13/cobra"

	imageaugmentor "github.com/menta2k/image-augmentor"
	"github.com/menta2k/image-augmentor/internal/config"
	"github.com/menta2k/image-augmentor/internal/imageio"
	"github.com/menta2k/image-augmentor/internal/telemetry"
	"github.com/menta2k/image-augmentor/pkg/affine"
)

type runOptions struct {
	configPath  string
	input       string
	target      string
	outDir      string
	count       int
	seed        uint64
	metricsFile string
}

// newRunCmd creates the "run" command.
func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Write augmented variants of an image and its optional label image",
		Example: `  augment run --in cat.jpg --count 8
  augment run --config augment.yaml --in scan.png --target mask.png --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") && opts.seed == 0 {
				return errors.New("--seed must be non-zero")
			}
			return runAugment(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (YAML or TOML)")
	cmd.Flags().StringVar(&opts.input, "in", "", "input image (jpg/png/webp/tiff/bmp)")
	cmd.Flags().StringVar(&opts.target, "target", "", "label image transformed with the same draw as --in")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory (overrides output.dir)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 1, "number of variants to write")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (overrides seed in the config)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func runAugment(cmd *cobra.Command, opts runOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if opts.count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", opts.count)
	}
	for _, path := range []string{opts.input, opts.target} {
		if path != "" && !imageio.IsImageFile(path) {
			return fmt.Errorf("%s: not an image file (want jpg/png/gif/bmp/tiff/webp)", path)
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}

	augOpts, err := cfg.ToOptions()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	augOpts.Logger = logger
	if cfg.Seed != 0 {
		augOpts.Rand = affine.NewRand(cfg.Seed)
	}
	aug, err := imageaugmentor.NewWithOptions(augOpts)
	if err != nil {
		return err
	}
	logger.Debug("Augmenter ready", "stages", aug.Stages(), "seed", cfg.Seed)
	printKeyValue(cmd.OutOrStdout(), "stages", strings.Join(aug.Stages(), " · "))

	img, err := imageio.Load(opts.input)
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}
	var label image.Image
	if opts.target != "" {
		if label, err = imageio.Load(opts.target); err != nil {
			return fmt.Errorf("load target: %w", err)
		}
	}

	if err := imageio.EnsureDir(cfg.Output.Dir); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	metrics := telemetry.New()
	prog := newProgress(logger, opts.count)
	imgOpts := imageio.Options{Format: cfg.Output.Format, Quality: cfg.Output.Quality, Lossless: cfg.Output.Lossless}
	// Label images must keep their exact values.
	labelOpts := imageio.Options{Format: "png"}

	for i := 0; i < opts.count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		kinds, err := writeVariant(aug, img, label, i, opts, cfg, imgOpts, labelOpts)
		metrics.Observe(start, kinds, err)
		if err != nil {
			writeMetrics(cmd, metrics, opts.metricsFile)
			return fmt.Errorf("variant %d: %w", i, err)
		}
		prog.variant(i, kinds)
	}

	writeMetrics(cmd, metrics, opts.metricsFile)
	prog.done(fmt.Sprintf("Augmented %d variant(s)", opts.count))
	printSuccess(cmd.OutOrStdout(), "Wrote %d variant(s)", opts.count)
	printFile(cmd.OutOrStdout(), cfg.Output.Dir)
	return nil
}

func writeVariant(aug *imageaugmentor.Augmenter, img, label image.Image, i int, opts runOptions, cfg *config.Config, imgOpts, labelOpts imageio.Options) ([]string, error) {
	out := cfg.Output
	imgPath := imageio.OutputPath(opts.input, out.Dir, out.Prefix, out.Suffix, out.Format, i)

	if label == nil {
		augmented, err := aug.AugmentImage(img)
		if err != nil {
			return nil, err
		}
		return []string{"image"}, imageio.Save(augmented, imgPath, imgOpts)
	}

	augmented, augLabel, err := aug.AugmentImagePair(img, label)
	if err != nil {
		return nil, err
	}
	if err := imageio.Save(augmented, imgPath, imgOpts); err != nil {
		return nil, err
	}
	labelPath := imageio.OutputPath(opts.target, out.Dir, out.Prefix, out.Suffix, labelOpts.Format, i)
	if labelPath == imgPath {
		labelPath = imageio.OutputPath(opts.target, out.Dir, out.Prefix, out.Suffix+"_target", labelOpts.Format, i)
	}
	return []string{"image", "target"}, imageio.Save(augLabel, labelPath, labelOpts)
}

func writeMetrics(cmd *cobra.Command, m *telemetry.Metrics, path string) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		loggerFromContext(cmd.Context()).Warn("Metrics not written", "err", err)
	}
}
