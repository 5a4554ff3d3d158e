package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/scanocr/constants"
)

func TestSummarize(t *testing.T) {
	results := []DocumentResult{
		{Status: constants.DocumentDone, Pages: []PageResult{
			{Status: constants.PageWritten, Tier: constants.QualityGood},
			{Status: constants.PageWritten, Tier: constants.QualityGood, PreprocessErr: errors.New("x")},
			{Status: constants.PageEngineFailed},
		}},
		{Status: constants.DocumentFailed, Err: errors.New("decode")},
		{Status: constants.DocumentDone, Pages: []PageResult{
			{Status: constants.PagePersistFailed, Tier: constants.QualityLow},
		}},
	}

	s := Summarize(results)
	assert.Equal(t, 3, s.Documents)
	assert.Equal(t, 1, s.FailedDocuments)
	assert.Equal(t, 4, s.Pages)
	assert.Equal(t, 2, s.ByStatus[constants.PageWritten])
	assert.Equal(t, 1, s.ByStatus[constants.PageEngineFailed])
	assert.Equal(t, 1, s.ByStatus[constants.PagePersistFailed])
	assert.Equal(t, 2, s.ByTier[constants.QualityGood])
	assert.Zero(t, s.ByTier[constants.QualityLow], "only written pages count toward tiers")
	assert.Equal(t, 1, s.Fallbacks)
	assert.True(t, s.Failed())

	clean := Summarize([]DocumentResult{{Status: constants.DocumentDone}})
	assert.False(t, clean.Failed())
	assert.False(t, Summarize(nil).Failed())
}
