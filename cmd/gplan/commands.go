package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/2x3systems/gplan/catalog"
	"github.com/2x3systems/gplan/extend"
	"github.com/2x3systems/gplan/gplan"
	"github.com/2x3systems/gplan/join"
	"github.com/2x3systems/gplan/pattern"
	"github.com/2x3systems/gplan/planner"
)

var errNoCatalog = errors.New("no catalog given (use --catalog)")

// withCatalog runs fn with the configured catalog (or nil) and closes it afterwards.
func (c *cli) withCatalog(readOnly bool, fn func(cat gplan.Catalog) error) error {
	ctx := gplan.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	cat, err := c.openCatalog(ctx, readOnly)
	if err != nil {
		return err
	}
	return fn(cat)
}

func (c *cli) extendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extend <pattern>",
		Short: "Lists the extend arcs reaching a pattern, cheapest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			X, err := pattern.Parse(args[0])
			if err != nil {
				return err
			}
			est, err := c.estimator()
			if err != nil {
				return err
			}
			return c.withCatalog(true, func(cat gplan.Catalog) error {
				en := extend.Enumerator{
					Estimator: est,
				}
				if cat != nil {
					en.Catalog = cat
					en.MaxCatalogSize = min(cat.MaxPatternSize(), c.cfg.MaxPatternSizeInGlogue)
				}
				arcs, err := en.Enumerate(X)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, arc := range arcs {
					fmt.Fprintf(out, "+%-4d w=%-10g %v\n", arc.TargetVtx, arc.Weight(), arc.Source)
				}
				return nil
			})
		},
	}
}

func (c *cli) decomposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decompose <pattern>",
		Short: "Lists the distinct join decompositions of a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			X, err := pattern.Parse(args[0])
			if err != nil {
				return err
			}
			en := join.Enumerator{
				MinPatternSize: c.cfg.MinPatternSize,
			}
			decomps, err := en.Enumerate(X)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, jd := range decomps {
				fmt.Fprintf(out, "on %v: [%v] [%v]\n", jd.JointIDs(), jd.Probe, jd.Build)
			}
			return nil
		},
	}
}

func (c *cli) exploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore <pattern>",
		Short: "Prints every plan alternative for a pattern and its sub-patterns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			X, err := pattern.Parse(args[0])
			if err != nil {
				return err
			}
			est, err := c.estimator()
			if err != nil {
				return err
			}
			return c.withCatalog(true, func(cat gplan.Catalog) error {
				m := planner.NewMemo(planner.DefaultRules(c.cfg, cat, est)...)
				if _, err := m.Explore(X); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), m.String())
				return nil
			})
		},
	}
}

func (c *cli) catalogCmd() *cobra.Command {
	catCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Builds and inspects pattern catalogs",
	}

	buildCmd := &cobra.Command{
		Use:   "build <pattern>...",
		Short: "Adds every connected sub-pattern of the given patterns to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds := make([]*pattern.Pattern, len(args))
			for i, arg := range args {
				X, err := pattern.Parse(arg)
				if err != nil {
					return err
				}
				seeds[i] = X
			}
			est, err := c.estimator()
			if err != nil {
				return err
			}
			return c.withCatalog(false, func(cat gplan.Catalog) error {
				if cat == nil {
					return errNoCatalog
				}
				defer cat.Close()
				added, err := catalog.Build(cat, seeds, est)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "added %d patterns\n", added)
				for Nv := 2; Nv <= cat.MaxPatternSize(); Nv++ {
					fmt.Fprintf(out, "  size %d: %d\n", Nv, cat.NumPatterns(Nv))
				}
				return cat.Close()
			})
		},
	}

	var sel gplan.PatternSelector
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lists the patterns in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(true, func(cat gplan.Catalog) error {
				if cat == nil {
					return errNoCatalog
				}
				defer cat.Close()

				onHit := make(chan *pattern.Pattern, 8)
				go func() {
					cat.Select(sel, onHit)
					close(onHit)
				}()
				out := cmd.OutOrStdout()
				for X := range onHit {
					fmt.Fprintln(out, X)
				}
				return nil
			})
		},
	}
	listCmd.Flags().IntVar(&sel.MinSize, "min", 0, "smallest vertex count listed")
	listCmd.Flags().IntVar(&sel.MaxSize, "max", 0, "largest vertex count listed (0 for no limit)")

	catCmd.AddCommand(buildCmd, listCmd)
	return catCmd
}
