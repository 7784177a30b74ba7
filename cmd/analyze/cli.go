/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dex-offload/footprint/analyzer"
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/internal/config"
	"github.com/dex-offload/footprint/internal/trace"
	"github.com/apex/log"
)

// errUsage signals an argument-count mismatch (spec section 6: argv count
// other than 2 ["analyze <apk>"] or 3 ["analyze -s <apk>"] prints usage
// and exits 0). HandleCli treats this sentinel specially: every other
// failure exits non-zero instead.
var errUsage = errors.New("usage")

// loadContainer turns an APK path into the classloader's symbolic inputs:
// a ClassProvider over its classes, a ConstPool over its constants, the
// ordered entry-point class descriptors to walk, and the package name
// from its manifest. Unpacking the actual DEX/ZIP container is out of
// scope here (spec section 1's "out of scope" list) — production wiring
// replaces this hook with a real container reader; tests override it
// with a fixture.
var loadContainer = func(apkPath string) (classloader.ClassProvider, classloader.ConstPool, []string, string, error) {
	return nil, nil, nil, "", errors.New("container loading is out of scope: no ClassProvider available for " + apkPath)
}

// newRootCommand builds the cobra command, parameterized over staticOnly
// so HandleCli can read the flag's final value after Execute returns.
func newRootCommand(staticOnly *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "analyze <apk>",
		Short:         "Analyze an Android APK's migration footprint",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, posArgs []string) error {
			if len(posArgs) != 1 {
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			return runAnalysis(posArgs[0], *staticOnly)
		},
	}
	cmd.Flags().BoolVarP(staticOnly, "static", "s", false,
		"run the full per-method footprint pass instead of the legacy global-reachability-only pass")
	return cmd
}

// HandleCli parses argv-shaped args (args[0] is the program name, matching
// os.Args) and runs the selected mode, returning the process exit code
// rather than calling os.Exit directly so tests can drive it without
// terminating the test binary.
func HandleCli(args []string) int {
	var staticOnly bool
	cmd := newRootCommand(&staticOnly)
	cmd.SetOut(os.Stderr)
	cmd.SetErr(os.Stderr)
	if len(args) > 1 {
		cmd.SetArgs(args[1:])
	} else {
		cmd.SetArgs([]string{})
	}

	err := cmd.Execute()
	if err == nil {
		return 0
	}
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, cmd.UsageString())
		return 0
	}
	trace.Error("analysis failed", log.Fields{"error": err.Error()})
	return 1
}

// runAnalysis resolves configuration, builds the AnalyzerContext, and
// dispatches to the mode staticOnly selects.
func runAnalysis(apkPath string, staticOnly bool) error {
	provider, pool, entryClasses, packageName, err := loadContainer(apkPath)
	if err != nil {
		return err
	}

	cfg := config.Resolve(apkPath, !staticOnly, packageName)
	ctx, err := analyzer.NewAnalyzerContext(cfg, provider, pool, nil)
	if err != nil {
		return err
	}

	if cfg.GlobalOnly {
		return ctx.RunGlobalReachability(entryClasses)
	}
	return ctx.RunFootprintAnalysis(entryClasses)
}
