/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/opcodes"
)

type mapProvider map[string]classloader.RawClass

func (p mapProvider) LoadRaw(descriptor string) (classloader.RawClass, bool) {
	c, ok := p[descriptor]
	return c, ok
}

type emptyPool struct{}

func (emptyPool) FieldRef(int) classloader.FieldRefEntry   { return classloader.FieldRefEntry{} }
func (emptyPool) MethodRef(int) classloader.MethodRefEntry { return classloader.MethodRefEntry{} }

func fixtureProvider() mapProvider {
	return mapProvider{
		"Ljava/lang/Object;": {Descriptor: "Ljava/lang/Object;"},
		"LHost;": {
			Descriptor:      "LHost;",
			SuperDescriptor: "Ljava/lang/Object;",
			Methods: []classloader.RawMethod{
				{
					Name: "run", Descriptor: "()V", IsStatic: true,
					Code: &classloader.CodeItem{
						Instructions: []classloader.Instruction{
							{Op: opcodes.OpReturnVoid, Offset: 0, Width: 1},
						},
					},
				},
			},
		},
	}
}

// captureStderr runs fn with os.Stderr redirected to a pipe and returns
// what was written to it, mirroring the teacher's os.Pipe()-based
// HandleCli test idiom.
func captureStderr(t *testing.T, fn func() int) (string, int) {
	t.Helper()
	normal := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	code := fn()

	w.Close()
	os.Stderr = normal
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), code
}

// TestHandleCliUsageMessageOnMissingArg exercises argv count 1 ("analyze"
// with no apk): spec section 6 requires usage on stderr and exit 0.
func TestHandleCliUsageMessageOnMissingArg(t *testing.T) {
	msg, code := captureStderr(t, func() int {
		return HandleCli([]string{"analyze"})
	})
	require.Equal(t, 0, code)
	require.Contains(t, msg, "Usage:")
}

// TestHandleCliUsageMessageOnTooManyArgs exercises argv count 4
// ("analyze -s extra apk"), also a usage+exit-0 case.
func TestHandleCliUsageMessageOnTooManyArgs(t *testing.T) {
	msg, code := captureStderr(t, func() int {
		return HandleCli([]string{"analyze", "-s", "extra", "apk"})
	})
	require.Equal(t, 0, code)
	require.Contains(t, msg, "Usage:")
}

// TestHandleCliContainerLoadFailureExitsNonZero exercises the
// "any initialization failure exits non-zero" contract using the default,
// un-overridden loadContainer stub (container unpacking is out of scope).
func TestHandleCliContainerLoadFailureExitsNonZero(t *testing.T) {
	_, code := captureStderr(t, func() int {
		return HandleCli([]string{"analyze", "whatever.apk"})
	})
	require.Equal(t, 1, code)
}

// TestHandleCliStaticFlagRunsFootprintMode exercises "analyze -s <apk>":
// argv count 3, staticOnly true, full per-method footprint pass, which
// should leave persisted artifacts under the resolved cache directory.
func TestHandleCliStaticFlagRunsFootprintMode(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OFFLOAD_PARSE_CACHE", dir)

	provider := fixtureProvider()
	original := loadContainer
	loadContainer = func(apkPath string) (classloader.ClassProvider, classloader.ConstPool, []string, string, error) {
		return provider, emptyPool{}, []string{"LHost;"}, "com.example.footprint", nil
	}
	t.Cleanup(func() { loadContainer = original })

	_, code := captureStderr(t, func() int {
		return HandleCli([]string{"analyze", "-s", "app.apk"})
	})
	require.Equal(t, 0, code)

	_, err := os.Stat(filepath.Join(dir, "com.example.footprint", "strdict.bin"))
	require.NoError(t, err, "footprint mode should have persisted a string table")
}

// TestHandleCliLegacyModeWritesReachabilityText exercises "analyze <apk>":
// argv count 2, staticOnly false, legacy global-reachability-only pass,
// which should write the four debug text files spec section 6 names.
func TestHandleCliLegacyModeWritesReachabilityText(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OFFLOAD_PARSE_CACHE", dir)

	provider := fixtureProvider()
	original := loadContainer
	loadContainer = func(apkPath string) (classloader.ClassProvider, classloader.ConstPool, []string, string, error) {
		return provider, emptyPool{}, []string{"LHost;"}, "com.example.legacy", nil
	}
	t.Cleanup(func() { loadContainer = original })

	_, code := captureStderr(t, func() int {
		return HandleCli([]string{"analyze", "app.apk"})
	})
	require.Equal(t, 0, code)

	contents, err := os.ReadFile(filepath.Join(dir, "com.example.legacy", "reachablemethod.txt"))
	require.NoError(t, err)
	require.True(t, strings.Contains(string(contents), "LHost;.run()V"))
}
