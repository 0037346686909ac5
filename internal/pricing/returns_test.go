package pricing

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnnualizedCallReturn(t *testing.T) {
	// 1.00 premium on a 100.00 stock over 365 days is a 1% yield.
	if actual := AnnualizedCallReturn(1.00, 100.00, 365); !almostEqual(actual, 1.0) {
		t.Fatalf("expected 1.0, got %f", actual)
	}
	// Halving the holding period doubles the annualized figure.
	full := AnnualizedCallReturn(2.50, 80.00, 30)
	half := AnnualizedCallReturn(2.50, 80.00, 15)
	if !almostEqual(half, 2*full) {
		t.Fatalf("expected %f to be double %f", half, full)
	}
}

func TestAnnualizedPutReturn(t *testing.T) {
	// 1.00 premium against 49.00 of reserved capital over a year.
	if actual := AnnualizedPutReturn(1.00, 50.00, 365); !almostEqual(actual, 100.0/49.0) {
		t.Fatalf("expected %f, got %f", 100.0/49.0, actual)
	}
}

func TestReturnsClampNonFinite(t *testing.T) {
	// strike == bid makes capital at risk zero; the division blows up
	// and must come back as 0, not +Inf.
	if actual := AnnualizedPutReturn(5.00, 5.00, 30); actual != 0 {
		t.Fatalf("expected 0 for zero capital at risk, got %f", actual)
	}
	if actual := AnnualizedCallReturn(1.00, 0, 30); actual != 0 {
		t.Fatalf("expected 0 for zero spot, got %f", actual)
	}
	if actual := CallDistance(100, 1.00, 0); actual != 0 {
		t.Fatalf("expected 0 distance for zero spot, got %f", actual)
	}
}

func TestReturnsZeroDaysToExpiry(t *testing.T) {
	if actual := AnnualizedCallReturn(1.00, 100.00, 0); actual != 0 {
		t.Fatalf("expected 0 for expired contract, got %f", actual)
	}
	if actual := AnnualizedPutReturn(1.00, 50.00, -1); actual != 0 {
		t.Fatalf("expected 0 for negative holding period, got %f", actual)
	}
}

func TestDistances(t *testing.T) {
	// Call: strike 105, premium 1, spot 100 → 6% of upside cushion.
	if actual := CallDistance(105, 1.00, 100); !almostEqual(actual, 6.0) {
		t.Fatalf("expected 6.0, got %f", actual)
	}
	// Put: spot 100, premium 1, strike 95 → 0.04 cushion fraction.
	if actual := PutDistance(95, 1.00, 100); !almostEqual(actual, 0.04) {
		t.Fatalf("expected 0.04, got %f", actual)
	}
}
