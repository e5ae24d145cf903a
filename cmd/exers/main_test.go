package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoMain_HelpPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain([]string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stderr.String(), "usage: exers")
}

func TestDoMain_NoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain(nil, &stdout, &stderr)
	require.Equal(t, 0, code)
}

func TestDoMain_UnknownLanguageFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain([]string{"--lang", "cobol", "somefile.cob"}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "unknown language")
}

func TestDoMain_UnknownTargetFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain([]string{"--target", "gpu", "somefile.rs"}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "unknown target")
}

func TestDoMain_MissingFileFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain([]string{"/no/such/file.rs"}, &stdout, &stderr)
	require.Equal(t, 1, code)
}

func TestDoMain_InvalidMemoryLimitFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := doMain([]string{"--memory-limit", "not-a-size", "somefile.rs"}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "invalid --memory-limit")
}

func TestParseMemoryLimit(t *testing.T) {
	pages, err := parseMemoryLimit("")
	require.NoError(t, err)
	require.Equal(t, uint32(0), pages)

	pages, err = parseMemoryLimit("128KiB")
	require.NoError(t, err)
	require.Equal(t, uint32(2), pages)

	pages, err = parseMemoryLimit("64KiB")
	require.NoError(t, err)
	require.Equal(t, uint32(1), pages)

	_, err = parseMemoryLimit("not-a-size")
	require.Error(t, err)
}
