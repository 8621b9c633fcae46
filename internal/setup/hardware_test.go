package setup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHardwareCheckerReportsCoreCount(t *testing.T) {
	report, err := NewHardwareChecker().Check(context.Background())
	require.NoError(t, err)
	assert.Greater(t, report.Cores, 0)
}
