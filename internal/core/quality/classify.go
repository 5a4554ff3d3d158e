// Package quality maps a page's mean OCR confidence onto a presentational tier.
package quality

import "github.com/joseph-ayodele/scanocr/constants"

type threshold struct {
	min  float64
	tier constants.QualityTier
}

// Ordered best first; the first floor the confidence reaches wins.
var thresholds = []threshold{
	{0.90, constants.QualityExcellent},
	{0.80, constants.QualityVeryGood},
	{0.65, constants.QualityGood},
	{0.60, constants.QualityMedium},
}

// Classify is total: NaN and anything below 0.60 is Low.
func Classify(confidence float64) constants.QualityTier {
	for _, t := range thresholds {
		if confidence >= t.min {
			return t.tier
		}
	}
	return constants.QualityLow
}
