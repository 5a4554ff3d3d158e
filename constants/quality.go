package constants

import (
	"strings"
)

// QualityTier is the presentational label derived from a page's mean OCR confidence.
type QualityTier string

const (
	QualityLow       QualityTier = "Low"
	QualityMedium    QualityTier = "Medium"
	QualityGood      QualityTier = "Good"
	QualityVeryGood  QualityTier = "VeryGood"
	QualityExcellent QualityTier = "Excellent"
)

var allTiers = []QualityTier{
	QualityLow,
	QualityMedium,
	QualityGood,
	QualityVeryGood,
	QualityExcellent,
}

// Tiers returns every tier from worst to best.
func Tiers() []QualityTier {
	out := make([]QualityTier, len(allTiers))
	copy(out, allTiers)
	return out
}

// Label is the human-facing spelling used in status lines.
func (q QualityTier) Label() string {
	if q == QualityVeryGood {
		return "Very good"
	}
	return string(q)
}

// EngineMode selects the Tesseract recognition engine (--oem).
type EngineMode string

const (
	EngineModeDefault        EngineMode = "default"
	EngineModeLSTM           EngineMode = "lstm"
	EngineModeLegacy         EngineMode = "legacy"
	EngineModeLegacyPlusLSTM EngineMode = "legacy+lstm"
)

// OEM returns the numeric --oem value for the mode.
func (m EngineMode) OEM() int {
	switch m {
	case EngineModeLegacy:
		return 0
	case EngineModeLSTM:
		return 1
	case EngineModeLegacyPlusLSTM:
		return 2
	default:
		return 3
	}
}

// ParseEngineMode maps user input (including a few synonyms) to an EngineMode.
func ParseEngineMode(input string) (EngineMode, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return EngineModeDefault, true
	}

	synonyms := map[string]EngineMode{
		"3":                  EngineModeDefault,
		"1":                  EngineModeLSTM,
		"lstm_only":          EngineModeLSTM,
		"0":                  EngineModeLegacy,
		"tesseract_only":     EngineModeLegacy,
		"2":                  EngineModeLegacyPlusLSTM,
		"tesseractandlstm":   EngineModeLegacyPlusLSTM,
		"tesseract_lstm":     EngineModeLegacyPlusLSTM,
		"tesseract_and_lstm": EngineModeLegacyPlusLSTM,
	}
	if m, ok := synonyms[normalized]; ok {
		return m, true
	}

	for _, m := range []EngineMode{EngineModeDefault, EngineModeLSTM, EngineModeLegacy, EngineModeLegacyPlusLSTM} {
		if normalized == string(m) {
			return m, true
		}
	}
	return EngineModeDefault, false
}
