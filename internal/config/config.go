/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package config resolves the analyzer's environment into a single,
// explicitly-passed Config value. Per the design note on "global mutable
// state", nothing here is read as a package-level global outside of this
// constructor — every downstream package receives the resolved value.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultCacheDir is used when OFFLOAD_PARSE_CACHE is unset (spec section 6).
const DefaultCacheDir = "/data/data"

// bootstrapJars is the hard-coded nine-entry Android framework classpath
// (spec section 6). The APK under analysis is appended last by Resolve.
var bootstrapJars = []string{
	"core.jar",
	"core-junit.jar",
	"bouncycastle.jar",
	"ext.jar",
	"framework.jar",
	"framework2.jar",
	"android.policy.jar",
	"services.jar",
	"apache-xml.jar",
}

// Config is the fully-resolved, immutable configuration for one analyzer
// run. Build it once in cmd/analyze and thread it through AnalyzerContext.
type Config struct {
	// CacheDir is the base directory for output artifacts; artifacts for
	// package P land under CacheDir/P/.
	CacheDir string
	// Classpath is the bootstrap JARs in classpath order, followed by the
	// APK under analysis. Order matters: it is the tie-break for
	// find_subclasses/find_implementers enumeration (spec section 4.1).
	Classpath []string
	// GlobalOnly selects the legacy static-only pass (analyze <apk>,
	// no -s flag) instead of the full footprint analysis.
	GlobalOnly bool
	// APKPath is the container under analysis.
	APKPath string
	// PackageName is extracted from the APK manifest by an external
	// badging tool before Resolve is called; out of scope here (spec
	// section 1's "out of scope" list).
	PackageName string
}

// Resolve builds a Config for analyzing apkPath. globalOnly selects the
// legacy reachability-only mode (argv count 2: "analyze <apk>"); the full
// footprint mode is selected by passing globalOnly=false (argv count 3:
// "analyze -s <apk>").
func Resolve(apkPath string, globalOnly bool, packageName string) Config {
	cacheDir := os.Getenv("OFFLOAD_PARSE_CACHE")
	if strings.TrimSpace(cacheDir) == "" {
		cacheDir = DefaultCacheDir
	}

	classpath := make([]string, 0, len(bootstrapJars)+1)
	classpath = append(classpath, bootstrapJars...)
	classpath = append(classpath, apkPath)

	return Config{
		CacheDir:    cacheDir,
		Classpath:   classpath,
		GlobalOnly:  globalOnly,
		APKPath:     apkPath,
		PackageName: packageName,
	}
}

// ArtifactDir is the <cache>/<package>/ directory artifacts are written
// under (spec section 6).
func (c Config) ArtifactDir() string {
	return filepath.Join(c.CacheDir, c.PackageName)
}
