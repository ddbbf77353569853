package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/formatting"
)

func TestCommandFlags_Printer(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    formatting.Format
		wantErr bool
	}{
		{"table", "table", formatting.FormatTable, false},
		{"wide", "wide", formatting.FormatWide, false},
		{"json", "json", formatting.FormatJSON, false},
		{"yaml", "yaml", formatting.FormatYAML, false},
		{"invalid", "invalid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &CommandFlags{OutputFormat: tt.format}
			p, err := flags.Printer(&bytes.Buffer{})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported output format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Format())
		})
	}
}

func TestRegisterCommonFlags(t *testing.T) {
	t.Setenv(BackendEnvVar, "https://env.example.com/api")

	var flags CommandFlags
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterCommonFlags(cmd, &flags, "/tmp/studio")

	cmd.SetArgs([]string{"-o", "json", "--environment", "staging", "--no-headers"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "json", flags.OutputFormat)
	assert.Equal(t, "staging", flags.Environment)
	assert.True(t, flags.NoHeaders)
	assert.Equal(t, "/tmp/studio", flags.ConfigPath)
	assert.Equal(t, "https://env.example.com/api", flags.Backend)
}
