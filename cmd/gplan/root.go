package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/2x3systems/gplan/catalog"
	"github.com/2x3systems/gplan/estimate"
	"github.com/2x3systems/gplan/gplan"
)

// cli holds the state shared by all gplan commands.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     gplan.Config
}

// flag name => config key
var configFlags = map[string]string{
	"max-pattern-size": "max_pattern_size_in_glogue",
	"min-pattern-size": "min_pattern_size",
	"catalog":          "catalog_path",
	"stats":            "stats_path",
}

func newRootCmd() *cobra.Command {
	c := &cli{
		v: viper.New(),
	}

	root := &cobra.Command{
		Use:          "gplan",
		Short:        "Enumerates the plan space of graph patterns",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (YAML)")
	flags.Int("max-pattern-size", gplan.DefaultMaxPatternSizeInGlogue, "largest pattern answered by the catalog")
	flags.Int("min-pattern-size", gplan.DefaultMinPatternSize, "smallest pattern given join decompositions")
	flags.String("catalog", "", "catalog db pathname")
	flags.String("stats", "", "graph statistics file (YAML)")
	for name, key := range configFlags {
		if err := c.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		c.extendCmd(),
		c.decomposeCmd(),
		c.exploreCmd(),
		c.catalogCmd(),
	)
	return root
}

// loadConfig layers the config file, GPLAN_* env vars, and flags over the defaults.
func (c *cli) loadConfig() error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
		if err := c.v.ReadInConfig(); err != nil {
			return errors.Wrapf(gplan.ErrBadConfig, "reading %q: %v", c.cfgFile, err)
		}
	}
	c.v.SetEnvPrefix("GPLAN")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	c.cfg = gplan.DefaultConfig()
	if err := c.v.Unmarshal(&c.cfg); err != nil {
		return errors.Wrap(gplan.ErrBadConfig, err.Error())
	}
	return c.cfg.Validate()
}

func (c *cli) estimator() (gplan.WeightEstimator, error) {
	if c.cfg.StatsPath == "" {
		return estimate.Uniform{}, nil
	}
	stats, err := estimate.LoadStats(c.cfg.StatsPath)
	if err != nil {
		return nil, err
	}
	return estimate.StatsEstimator{Stats: stats}, nil
}

// openCatalog opens the configured catalog, returning a nil Catalog if none is configured.
func (c *cli) openCatalog(ctx gplan.CatalogContext, readOnly bool) (gplan.Catalog, error) {
	if c.cfg.CatalogPath == "" {
		return nil, nil
	}
	opts := gplan.CatalogOpts{
		DbPathName: c.cfg.CatalogPath,
		ReadOnly:   readOnly,
	}
	if !readOnly {
		opts.MaxPatternSize = c.cfg.MaxPatternSizeInGlogue
	}
	return catalog.OpenCatalog(ctx, opts)
}
