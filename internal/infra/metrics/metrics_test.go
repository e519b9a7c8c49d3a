package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGetIsSingleton(t *testing.T) {
	first := Get()
	second := Get()
	if first != second {
		t.Fatal("expected the same metrics instance")
	}

	before := testutil.ToFloat64(first.DecisionsTotal.WithLabelValues("submission", "approve"))
	second.DecisionsTotal.WithLabelValues("submission", "approve").Inc()
	after := testutil.ToFloat64(first.DecisionsTotal.WithLabelValues("submission", "approve"))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %f", after-before)
	}
}
