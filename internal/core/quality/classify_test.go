package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/scanocr/constants"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		conf float64
		want constants.QualityTier
	}{
		{math.NaN(), constants.QualityLow},
		{math.Inf(-1), constants.QualityLow},
		{-0.2, constants.QualityLow},
		{0, constants.QualityLow},
		{0.5999, constants.QualityLow},
		{0.60, constants.QualityMedium},
		{0.6499, constants.QualityMedium},
		{0.65, constants.QualityGood},
		{0.7999, constants.QualityGood},
		{0.80, constants.QualityVeryGood},
		{0.8999, constants.QualityVeryGood},
		{0.90, constants.QualityExcellent},
		{1, constants.QualityExcellent},
		{1.5, constants.QualityExcellent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.conf), "confidence %v", tt.conf)
	}
}

func TestClassifyIsMonotonic(t *testing.T) {
	rank := map[constants.QualityTier]int{}
	for i, tier := range constants.Tiers() {
		rank[tier] = i
	}
	prev := Classify(0)
	for c := 0.0; c <= 1.0; c += 0.001 {
		cur := Classify(c)
		assert.GreaterOrEqual(t, rank[cur], rank[prev], "confidence %v", c)
		prev = cur
	}
}
