package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termul/termul/internal/config"
	"github.com/termul/termul/pkg/types"
)

func TestNew_DisabledReturnsNoop(t *testing.T) {
	tel, err := New(context.Background(), config.TelemetryConfig{Enabled: false})

	require.NoError(t, err)
	require.NotNil(t, tel)

	// All recording is a no-op and Close never fails.
	tel.RecordScan(1.5, 3, true)
	tel.RecordFinding(types.RiskCritical)
	assert.NoError(t, tel.Close())
}

func TestNew_UnsupportedExporter(t *testing.T) {
	tel, err := New(context.Background(), config.TelemetryConfig{
		Enabled:      true,
		ServiceName:  "termul",
		ExporterType: "jaeger",
	})

	assert.Error(t, err)
	assert.Nil(t, tel)
}
