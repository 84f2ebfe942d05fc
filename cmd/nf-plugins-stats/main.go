package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/incsteps/nf-plugins-stats/internal/config"
	"github.com/incsteps/nf-plugins-stats/internal/content"
	"github.com/incsteps/nf-plugins-stats/internal/generator"
	"github.com/incsteps/nf-plugins-stats/internal/metrics"
	"github.com/incsteps/nf-plugins-stats/internal/plugin"
	"github.com/incsteps/nf-plugins-stats/internal/readme"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

const exitCodeUsage = 2

// usageError reports a command line that cannot run. Usage has already been
// printed when it is returned.
type usageError struct {
	reason string
}

func (e *usageError) Error() string {
	return e.reason
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var uErr *usageError
	if errors.As(err, &uErr) {
		return exitCodeUsage
	}
	return 1
}

func newRootCommand(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nf-plugins-stats <github-token>",
		Short:   "Generate the Nextflow plugin statistics site content",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
				_ = cmd.Usage()
				return &usageError{reason: "no GitHub token provided"}
			}
			return run(log, cmd, args)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().String("content-dir", "", "output directory (default $CONTENT_DIR or content)")
	cmd.PersistentFlags().String("catalog-url", "", "plugin catalog URL (default $CATALOG_URL)")
	cmd.PersistentFlags().String("archive", "", "also write the content to this tar.gz file (default $CONTENT_ARCHIVE)")
	cmd.PersistentFlags().StringArrayP("plugin", "p", nil, "only generate the given plugin ids")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().SortFlags = false
	return cmd
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	err := newRootCommand(log).Execute()
	if err != nil {
		log.Errorf("ERROR: %v", err)
	}
	os.Exit(exitCode(err))
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func loadConfig(cmd *cobra.Command, args []string) (*config.GeneratorConfig, error) {
	gCfg, err := config.NewGeneratorConfigFromEnv()
	if err != nil {
		return nil, err
	}
	gCfg.Version = version
	gCfg.GitHubToken = strings.TrimSpace(args[0])
	if contentDir := must(cmd.PersistentFlags().GetString("content-dir")); contentDir != "" {
		gCfg.ContentDir = contentDir
	}
	if catalogURL := must(cmd.PersistentFlags().GetString("catalog-url")); catalogURL != "" {
		gCfg.CatalogURL = catalogURL
	}
	if archive := must(cmd.PersistentFlags().GetString("archive")); archive != "" {
		gCfg.ContentArchive = archive
	}
	return gCfg, gCfg.Validate()
}

func run(log *logrus.Logger, cmd *cobra.Command, args []string) error {
	if must(cmd.PersistentFlags().GetBool("debug")) {
		log.SetLevel(logrus.DebugLevel)
	}
	log.Infof("starting nf-plugins-stats (version=%s)", version)
	gCfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	if gCfg.EnableMetrics {
		exporter, err := metrics.NewExporter(gCfg)
		if err != nil {
			return err
		}
		defer func() {
			exporter.Flush()
			exporter.StopMetricsExporter()
		}()
	} else if err := metrics.RegisterViews(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := gCfg.CreateHTTPClient()
	log.Infof("fetching plugin catalog from %s", gCfg.CatalogURL)
	plugins, err := plugin.FetchCatalog(ctx, httpClient, gCfg.CatalogURL)
	if err != nil {
		return err
	}
	if ids := must(cmd.PersistentFlags().GetStringArray("plugin")); len(ids) > 0 {
		plugins = plugins.Filter(ids...)
		log.Infof("restricting generation to %d plugin(s)", len(plugins))
	}

	ghClient, err := gCfg.CreateGitHubClient()
	if err != nil {
		return err
	}

	sink := content.MultiSink{content.NewFileSink(gCfg.ContentDir)}
	if gCfg.PublishToBucket() {
		s3Client, err := gCfg.CreateS3Client()
		if err != nil {
			return err
		}
		log.Infof("publishing content to bucket %s", gCfg.ContentBucket)
		sink = append(sink, content.NewBucketSink(log, s3Client, gCfg.GetBucket(), "content"))
	}

	var archive *content.ArchiveSink
	if gCfg.ContentArchive != "" {
		archive, err = content.NewArchiveSink(gCfg.ContentArchive, "content")
		if err != nil {
			return err
		}
		sink = append(sink, archive)
	}

	resolver := readme.NewResolver(log, httpClient, gCfg.RawContentURL)
	gen := generator.New(log, ghClient, resolver, config.Groups, sink, gCfg.CacheTTL)
	summary := gen.Run(ctx, plugins)

	if archive != nil {
		fileName, checksum, err := archive.Close()
		if err != nil {
			return err
		}
		log.Infof("wrote content archive %s (sha256=%s)", fileName, checksum)
	}

	log.WithFields(logrus.Fields{
		"generated": len(summary.Generated),
		"skipped":   len(summary.Skipped),
	}).Info("done")
	if len(summary.Skipped) > 0 {
		log.Warnf("skipped plugins: %s", strings.Join(summary.Skipped, ", "))
	}
	return ctx.Err()
}
