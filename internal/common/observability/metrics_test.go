// internal/common/observability/metrics_test.go
package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordJobMetrics(t *testing.T) {
	obs := New("observability-test")
	ctx := context.Background()

	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "score-assessment")
		obs.RecordJobDuration(ctx, "score-assessment", 42*time.Millisecond)
	})

	obs.Shutdown()
}

func TestRecordJobMetrics_NilSafe(t *testing.T) {
	var obs *Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "seat-reserve")
		obs.RecordJobDuration(ctx, "seat-reserve", time.Second)
		obs.Shutdown()
	})
}
