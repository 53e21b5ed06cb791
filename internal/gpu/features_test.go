package gpu

import (
	"testing"
)

func TestFeatureSetOperations(t *testing.T) {
	type spec struct {
		a, b     Features
		expAnd   Features
		expOr    Features
		contains bool
	}
	specs := []spec{
		{
			NewFeatures(GeometryShader, SamplerAnisotropy),
			NewFeatures(SamplerAnisotropy),
			NewFeatures(SamplerAnisotropy),
			NewFeatures(GeometryShader, SamplerAnisotropy),
			true,
		},
		{
			NewFeatures(SamplerAnisotropy),
			NewFeatures(GeometryShader, TimelineSemaphore),
			Features{},
			NewFeatures(SamplerAnisotropy, GeometryShader, TimelineSemaphore),
			false,
		},
		{
			NewFeatures(ScalarBlockLayout, RobustBufferAccess),
			NewFeatures(ScalarBlockLayout),
			NewFeatures(ScalarBlockLayout),
			NewFeatures(ScalarBlockLayout, RobustBufferAccess),
			true,
		},
	}

	for index, s := range specs {
		if got := s.a.And(s.b); got != s.expAnd {
			t.Fatalf("[spec %d] expected And to return %s; got %s", index, s.expAnd, got)
		}
		if got := s.a.Or(s.b); got != s.expOr {
			t.Fatalf("[spec %d] expected Or to return %s; got %s", index, s.expOr, got)
		}
		if got := s.a.Contains(s.b); got != s.contains {
			t.Fatalf("[spec %d] expected Contains to return %t; got %t", index, s.contains, got)
		}
	}
}

func TestFeatureSetSpansWords(t *testing.T) {
	f := NewFeatures(TimelineSemaphore)
	if !f.Has(TimelineSemaphore) {
		t.Fatal("expected TimelineSemaphore to be set")
	}
	if f.Has(RobustBufferAccess) {
		t.Fatal("expected RobustBufferAccess to be unset")
	}
	if featureCount <= 64 {
		t.Skip("feature table fits a single word")
	}
	if f.bits[int(TimelineSemaphore)/64] == 0 {
		t.Fatal("expected TimelineSemaphore bit to live in its own word")
	}
}

func TestMissingFeatures(t *testing.T) {
	available := NewFeatures(SamplerAnisotropy)
	required := NewFeatures(SamplerAnisotropy, GeometryShader, TimelineSemaphore)

	missing := available.Missing(required)
	if len(missing) != 2 || missing[0] != GeometryShader || missing[1] != TimelineSemaphore {
		t.Fatalf("expected [GeometryShader TimelineSemaphore]; got %v", missing)
	}

	if exp, got := "{GeometryShader, SamplerAnisotropy}", NewFeatures(SamplerAnisotropy, GeometryShader).String(); got != exp {
		t.Fatalf("expected %q; got %q", exp, got)
	}
}

func TestFeatureNamesCoverTable(t *testing.T) {
	for feature := Feature(0); feature < featureCount; feature++ {
		if feature.String() == "" {
			t.Fatalf("feature %d has no name", int(feature))
		}
	}
	if !(Features{}).IsEmpty() {
		t.Fatal("expected zero value to be empty")
	}
}
