package api

import (
	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

// Classify maps every name to its category.
func (s *Api) Classify(names []string) *common.ClassifyResponse {
	resp := &common.ClassifyResponse{Categories: make(map[string]cookielib.Category, len(names))}
	classifier := s.analyzer.Classifier()
	for _, name := range names {
		resp.Categories[name] = classifier.Classify(name)
	}
	return resp
}

// Score rates cookies and computes the site score. Categories and risk are
// recomputed, whatever the caller sent.
func (s *Api) Score(cookies []cookielib.Cookie) cookielib.PrivacyScore {
	return cookielib.ComputePrivacyScore(s.analyzer.Analyze(cookies, ""))
}
