package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Totals(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	err := r.Totals("Traffic totals", []api.PeriodTotal{
		{Period: "202601", Label: "Jan 2026", Count: 12, Amount: 3.5},
		{Period: "202602", Label: "Feb 2026", Count: 8, Amount: 1.25},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Traffic totals")
	assert.Contains(t, out, "| 202601     | Jan 2026     |           12 |             3.50 |")
	assert.Contains(t, out, "Total: 20 records, 4.75")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	width := len(lines[2])
	for _, line := range lines[2 : len(lines)-1] {
		assert.Len(t, line, width, line)
	}
}
