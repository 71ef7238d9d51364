package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"go.goms.io/aks/AKSupport/pkg/checker"
	"go.goms.io/aks/AKSupport/pkg/notify"
	"go.goms.io/aks/AKSupport/pkg/policy"
)

func sampleResult() *checker.Result {
	status := policy.SupportEndingSoon
	return &checker.Result{
		ClusterName:     "prod-aks",
		Region:          "westeurope",
		RunningVersion:  "1.24.9",
		CatalogVersions: []string{"1.24.9", "1.25.5", "1.26.0"},
		Status:          &status,
		ExitCode:        checker.ExitSupportEndingSoon,
		Notifications:   &notify.DispatchResult{Delivered: 1, Failed: 1},
		CheckedAt:       time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestWriteReportText(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeReport(&out, sampleResult(), "text"))

	text := out.String()
	assert.Contains(t, text, "Cluster:   prod-aks")
	assert.Contains(t, text, "Running:   1.24.9")
	assert.Contains(t, text, "Supported: 1.24.9, 1.25.5, 1.26.0")
	assert.Contains(t, text, "Status:    Support Ending Soon")
	assert.Contains(t, text, "Notified:  1 delivered, 1 failed, 0 skipped")
	assert.NotContains(t, text, "Error:")
}

func TestWriteReportJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeReport(&out, sampleResult(), "json"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "prod-aks", decoded["clusterName"])
	assert.Equal(t, "Support Ending Soon", decoded["status"])
	assert.EqualValues(t, 3, decoded["exitCode"])
}

func TestWriteReportYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeReport(&out, sampleResult(), "yaml"))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "westeurope", decoded["region"])
	assert.Equal(t, "Support Ending Soon", decoded["status"])
}

func TestWriteReportNilResult(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeReport(&out, nil, "text"))
	assert.Empty(t, out.String())
}

func TestExitCodeError(t *testing.T) {
	cause := errors.New("catalog unavailable")
	err := error(&exitCodeError{Code: checker.ExitFailure, Err: cause})

	var exitErr *exitCodeError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "catalog unavailable", err.Error())

	statusOnly := &exitCodeError{Code: checker.ExitNotSupported}
	assert.Equal(t, "exit code 2", statusOnly.Error())
	assert.Nil(t, statusOnly.Unwrap())
}

func TestRunVersion(t *testing.T) {
	assert.Equal(t, 0, run([]string{"version"}))

	var out bytes.Buffer
	runVersion(&out)
	assert.Contains(t, out.String(), "Version: dev")
}

func TestRunRejectsInvalidInvocations(t *testing.T) {
	t.Setenv("AZURE_SUBSCRIPTION_ID", "")
	t.Setenv("AZURE_AKS_REGION", "")

	assert.Equal(t, 1, run([]string{"check", "--log-level", "verbose"}))
	assert.Equal(t, 1, run([]string{"unknown-command"}))
}
