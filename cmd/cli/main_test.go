package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/history"
	"github.com/recontriage/recontriage/pkg/stream"
	"github.com/recontriage/recontriage/pkg/supervisor"
	"github.com/recontriage/recontriage/pkg/vulnscan"
)

func triageFixture() []asset.Record {
	return []asset.Record{
		{Identifier: "shop.example.com", TechStack: []string{"Nginx", "PHP"}},
		{Identifier: "api.example.com", TechStack: []string{"Envoy", "GraphQL"}, IsNew: true},
		{Identifier: "admin.example.com", TechStack: []string{"nginx", "Admin Panel"}, IsNew: true},
		{Identifier: "static.example.com"},
	}
}

func identifiers(records []asset.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Identifier)
	}
	return out
}

func TestApplyTriageNoFiltersKeepsEverything(t *testing.T) {
	records := triageFixture()

	kept := applyTriage(records, triageOptions{})
	assert.Equal(t, identifiers(records), identifiers(kept))
}

func TestApplyTriageTechFilter(t *testing.T) {
	kept := applyTriage(triageFixture(), triageOptions{Tech: "nginx"})
	assert.Equal(t, []string{"shop.example.com", "admin.example.com"}, identifiers(kept))
}

func TestApplyTriageNewOnly(t *testing.T) {
	kept := applyTriage(triageFixture(), triageOptions{NewOnly: true})
	assert.Equal(t, []string{"api.example.com", "admin.example.com"}, identifiers(kept))
}

func TestApplyTriageSensitiveOnly(t *testing.T) {
	kept := applyTriage(triageFixture(), triageOptions{SensitiveOnly: true})

	// GraphQL and Admin tags hit the sensitive keyword set.
	assert.Equal(t, []string{"api.example.com", "admin.example.com"}, identifiers(kept))
	for _, r := range kept {
		assert.True(t, r.Sensitive)
	}
}

func TestApplyTriageFiltersCompose(t *testing.T) {
	kept := applyTriage(triageFixture(), triageOptions{
		Tech:          "nginx",
		NewOnly:       true,
		SensitiveOnly: true,
	})
	assert.Equal(t, []string{"admin.example.com"}, identifiers(kept))
}

func TestCountNew(t *testing.T) {
	assert.Equal(t, 2, countNew(triageFixture()))
	assert.Equal(t, 0, countNew(nil))
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&supervisor.LaunchError{Path: "./bin/recon-engine", Err: os.ErrNotExist}, "launch"},
		{&supervisor.ExitError{Code: 2, Stderr: "bad flag"}, "exit"},
		{&stream.ToolError{Kind: "rate_limited", Message: "slow down"}, "domain"},
		{&vulnscan.LineError{Line: 4, Err: errors.New("bad json")}, "parse"},
		{fmt.Errorf("save: %w", history.ErrPersist), "persist"},
		{context.Canceled, "cancelled"},
		{context.DeadlineExceeded, "cancelled"},
		{vulnscan.ErrNoTargets, "no_targets"},
		{errors.New("something else"), "other"},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.want, classifyError(tc.err), "classifyError(%v)", tc.err)
	}
}

func TestClassifyErrorWrapped(t *testing.T) {
	err := fmt.Errorf("recon stage: %w", &supervisor.LaunchError{Path: "x", Err: os.ErrPermission})
	assert.Equal(t, "launch", classifyError(err))
}

func TestDescribeRunError(t *testing.T) {
	msg := describeRunError(&supervisor.LaunchError{Path: "./bin/recon-engine", Err: os.ErrNotExist})
	assert.Contains(t, msg, "./bin/recon-engine")

	msg = describeRunError(&supervisor.ExitError{Code: 3, Stderr: "  config not found\n"})
	assert.Contains(t, msg, "code 3")
	assert.Contains(t, msg, "config not found")

	msg = describeRunError(&supervisor.ExitError{Code: 1})
	assert.Equal(t, "Process exited with code 1", msg)

	msg = describeRunError(&stream.ToolError{Kind: "rate_limited", Message: "slow down"})
	assert.Contains(t, msg, "rate_limited")
	assert.Contains(t, msg, "slow down")

	assert.Equal(t, "Run cancelled", describeRunError(context.Canceled))
	assert.Equal(t, "Run timed out", describeRunError(context.DeadlineExceeded))
	assert.Equal(t, "plain failure", describeRunError(errors.New("plain failure")))
}

func TestParseMinSeverity(t *testing.T) {
	s, err := parseMinSeverity("")
	require.NoError(t, err)
	assert.Equal(t, finding.Severity(""), s)

	s, err = parseMinSeverity("  HIGH ")
	require.NoError(t, err)
	assert.Equal(t, finding.High, s)

	_, err = parseMinSeverity("catastrophic")
	assert.Error(t, err)
}

func TestFirstOr(t *testing.T) {
	assert.Equal(t, "a", firstOr([]string{"a", "b"}, "fallback"))
	assert.Equal(t, "fallback", firstOr(nil, "fallback"))
}

func TestWriteTargetList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	require.NoError(t, writeTargetList(path, []string{"a.example.com", "b.example.com"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a.example.com\nb.example.com\n", string(data))
}
