package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{
			name:    "version",
			args:    []string{"version"},
			wantOut: "npmacro v",
		},
		{
			name:    "help",
			args:    []string{"--help"},
			wantOut: "Usage:",
		},
		{
			name:     "unknown command",
			args:     []string{"bogus"},
			wantCode: 1,
			wantErr:  "Error: unknown command \"bogus\"",
		},
		{
			name:     "render needs a file",
			args:     []string{"render"},
			wantCode: 1,
			wantErr:  "Error: accepts 1 arg(s), received 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			if tt.wantOut != "" {
				assert.Contains(t, stdout.String(), tt.wantOut)
			}
			if tt.wantErr != "" {
				assert.Contains(t, stderr.String(), tt.wantErr)
			}
		})
	}
}
