package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantInfo  bool
		wantJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", wantDebug: true, wantInfo: true},
		{name: "info json", level: "info", format: "json", wantInfo: true, wantJSON: true},
		{name: "error drops info", level: "error", format: "text"},
		{name: "unknown level is info", level: "loud", format: "text", wantInfo: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(tc.level, tc.format, &buf)

			logger.Debug("debug line")
			logger.Info("info line")

			out := buf.String()
			assert.Equal(t, tc.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")), out)
			assert.Equal(t, tc.wantInfo, bytes.Contains(buf.Bytes(), []byte("info line")), out)
			if tc.wantJSON {
				var rec map[string]any
				require.NoError(t, json.Unmarshal(bytes.Split(buf.Bytes(), []byte("\n"))[0], &rec))
				assert.Equal(t, "partsegnet", rec["app"])
			}
		})
	}
}
