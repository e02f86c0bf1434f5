package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/moneyhub/di/framework/app"
	"github.com/moneyhub/di/framework/container"
)

// newRootCommand builds the "di" command tree writing its output to out.
func newRootCommand(out io.Writer) *cobra.Command {
	var envFiles []string

	boot := func() (*app.Application, error) {
		a, err := app.New(envFiles...)
		if err != nil {
			return nil, err
		}
		if err := a.Boot(); err != nil {
			return nil, err
		}
		return a, nil
	}

	root := &cobra.Command{
		Use:          "di",
		Short:        "hierarchical dependency injection containers",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "env files to load (default .env)")

	root.AddCommand(
		serveCommand(boot),
		inspectCommand(boot),
		resolveCommand(boot),
		validateCommand(boot),
	)
	return root
}

type bootFunc func() (*app.Application, error)

func serveCommand(boot bootFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "boot the application and serve the debug endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := boot()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
}

func inspectCommand(boot bootFunc) *cobra.Command {
	var name string
	var raw bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "print a container's module tree and scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := boot()
			if err != nil {
				return err
			}
			c, err := pick(a, name)
			if err != nil {
				return err
			}
			if raw {
				spew.Fdump(cmd.OutOrStdout(), c.DebugInfo())
				return nil
			}
			printTree(cmd.OutOrStdout(), c.DebugInfo())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "container", "", "container to inspect (default: root)")
	cmd.Flags().BoolVar(&raw, "raw", false, "dump the snapshot structure")
	return cmd
}

func resolveCommand(boot bootFunc) *cobra.Command {
	var name, module string
	var raw bool

	cmd := &cobra.Command{
		Use:   "resolve ID",
		Short: "resolve an identifier and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := boot()
			if err != nil {
				return err
			}
			c, err := pick(a, name)
			if err != nil {
				return err
			}

			var r container.Resolver = c
			if module != "" {
				r = c.FromModule(module)
			}
			v, err := r.Resolve(args[0])
			if err != nil {
				return err
			}
			if raw {
				spew.Fdump(cmd.OutOrStdout(), v)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", v)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "container", "", "container to resolve in (default: root)")
	cmd.Flags().StringVar(&module, "module", "", "dotted module path to resolve from")
	cmd.Flags().BoolVar(&raw, "raw", false, "dump the resolved value")
	return cmd
}

func validateCommand(boot bootFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "check every declared dependency of every container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := boot()
			if err != nil {
				return err
			}
			all := a.Containers()
			names := make([]string, 0, len(all))
			for n := range all {
				names = append(names, n)
			}
			sort.Strings(names)

			failed := 0
			for _, n := range names {
				if err := all[n].Validate(); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", n, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", n)
			}
			if failed > 0 {
				return errors.Errorf("%d of %d containers failed validation", failed, len(names))
			}
			return nil
		},
	}
}

func pick(a *app.Application, name string) (*container.Container, error) {
	if name == "" {
		return a.Container, nil
	}
	return a.Lookup(name)
}
