package pipeline

import "github.com/joseph-ayodele/scanocr/constants"

// Summary aggregates a run.
type Summary struct {
	Documents       int
	FailedDocuments int
	Pages           int
	ByStatus        map[constants.PageStatus]int
	ByTier          map[constants.QualityTier]int
	Fallbacks       int
}

// Failed reports whether anything in the run failed.
func (s Summary) Failed() bool {
	return s.FailedDocuments > 0 || s.Pages > s.ByStatus[constants.PageWritten]
}

func Summarize(results []DocumentResult) Summary {
	s := Summary{
		ByStatus: map[constants.PageStatus]int{},
		ByTier:   map[constants.QualityTier]int{},
	}
	for _, r := range results {
		s.Documents++
		if r.Status != constants.DocumentDone {
			s.FailedDocuments++
		}
		for _, p := range r.Pages {
			s.Pages++
			s.ByStatus[p.Status]++
			if p.Status == constants.PageWritten {
				s.ByTier[p.Tier]++
			}
			if p.PreprocessErr != nil {
				s.Fallbacks++
			}
		}
	}
	return s
}
