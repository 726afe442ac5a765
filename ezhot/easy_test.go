package ezhot_test

import (
	"context"
	"testing"

	"github.com/tracelab/hotspot/ezhot"
)

func TestDefaultHistory(t *testing.T) {
	// No t.Parallel: the package shares one process-wide history.

	ezhot.Clear()

	ctx := context.Background()

	_, outer := ezhot.StartSpan(ctx, "outer")
	outer.Finish()

	_, inner := ezhot.StartSpan(ctx, "inner")
	inner.Finish()

	if want, have := 2, ezhot.Len(); want != have {
		t.Fatalf("Len: want %d, have %d", want, have)
	}

	snapshot := ezhot.Snapshot()
	if want, have := 2, len(snapshot); want != have {
		t.Fatalf("Snapshot: want %d records, have %d", want, have)
	}
	if want, have := "outer", snapshot[0].Label(); want != have {
		t.Errorf("Snapshot[0].Label: want %q, have %q", want, have)
	}

	summary := ezhot.Summary()
	if want, have := 2, summary.TotalCount; want != have {
		t.Errorf("Summary.TotalCount: want %d, have %d", want, have)
	}

	ezhot.Clear()

	if want, have := 0, ezhot.Len(); want != have {
		t.Errorf("Len after Clear: want %d, have %d", want, have)
	}
}
