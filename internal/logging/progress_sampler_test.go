package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 5},
		{"default bucket size for negative", -1, 5},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, 1) {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset() // should not panic
}

func TestProgressSampler_ShouldLogPassChange(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, 1) {
		t.Error("first pass should log")
	}
	if s.ShouldLog(0, 1) {
		t.Error("same pass and percent should not log again")
	}
	if !s.ShouldLog(0, 2) {
		t.Error("pass change should log")
	}
}

func TestProgressSampler_ShouldLogPercentBuckets(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, 1) {
		t.Error("0% should log")
	}
	if s.ShouldLog(3, 1) {
		t.Error("3% should not log (same bucket)")
	}
	if !s.ShouldLog(5, 1) {
		t.Error("5% should log (new bucket)")
	}
	if s.ShouldLog(7, 1) {
		t.Error("7% should not log (same bucket)")
	}
	if !s.ShouldLog(10, 1) {
		t.Error("10% should log (new bucket)")
	}
}

func TestProgressSampler_ShouldLogNegativePercent(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(-1, 1) {
		t.Error("first call should log even with negative percent")
	}
	if s.ShouldLog(-1, 1) {
		t.Error("negative percent should not trigger bucket logging")
	}
}

func TestProgressSampler_Reset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, 1)
	s.Reset()
	if !s.ShouldLog(50, 1) {
		t.Error("reset sampler should log again")
	}
}
