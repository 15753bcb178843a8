package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/config"
	"taskhub/internal/skill"
	pkgconfig "taskhub/pkg/config"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun_FromStdin(t *testing.T) {
	out, err := execute(t, `{"tasks":[]}`, "run", "prioritizer", "--input", "-")
	require.NoError(t, err)
	assert.Equal(t, "No tasks to prioritize.\n", out)
}

func TestRun_JSONEnvelope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"purpose":"Allow SNMP polling"}`), 0o600))

	out, err := execute(t, "", "run", "fcr", "--input", path, "--json")
	require.NoError(t, err)

	var env skill.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, "fcr", env.SkillType)
	assert.Contains(t, env.Output, "Allow SNMP polling")
}

func TestRun_DefaultRunbookWithoutInput(t *testing.T) {
	out, err := execute(t, "", "run", "runbook")
	require.NoError(t, err)
	assert.Contains(t, out, "FIREWALL - High Cpu")
}

func TestRun_ValidationError(t *testing.T) {
	_, err := execute(t, "", "run", "incident")
	var verr *skill.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRun_BadInput(t *testing.T) {
	_, err := execute(t, "[1]", "run", "fcr", "--input", "-")
	assert.ErrorContains(t, err, "JSON object")
}

func TestDomains(t *testing.T) {
	out, err := execute(t, "", "domains")
	require.NoError(t, err)
	assert.Contains(t, out, "firewall")
	assert.Contains(t, out, "high_cpu, connectivity_loss")
	assert.Contains(t, out, "vpn_config")
}

func TestDemo_SQLite(t *testing.T) {
	cfg := &config.Config{DB: pkgconfig.DBConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "demo.db")}}
	var out bytes.Buffer

	err := runDemo(context.Background(), &out, cfg, &options{logLevel: "error"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Skill executed: runbook")
	assert.Contains(t, out.String(), "# Troubleshooting Runbook: FIREWALL - High Cpu")
	assert.Contains(t, out.String(), "DEMO COMPLETE")
}
