package service

// Confidence labels attached to retrieval-backed answers and analyses.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Thresholds for the question-answering policy (cosine distance, lower
// is more similar) and the document-analysis policy (blended 0..1 score).
const (
	qaHighDistance   = 0.3
	qaMediumDistance = 0.5

	analysisHighScore   = 0.7
	analysisMediumScore = 0.4

	// Both analysis signals saturate at five findings.
	analysisSignalCap = 5.0
)

// QAConfidence derives a confidence label from the distance scores of
// retrieved articles: the closer the mean distance, the higher the
// confidence. No retrieved articles means low confidence.
func QAConfidence(distances []float64) string {
	if len(distances) == 0 {
		return ConfidenceLow
	}

	var sum float64
	for _, d := range distances {
		sum += d
	}
	mean := sum / float64(len(distances))

	switch {
	case mean < qaHighDistance:
		return ConfidenceHigh
	case mean < qaMediumDistance:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// AnalysisConfidence derives a confidence label for a document analysis
// by blending two normalized signals: how many relevant laws were found
// and how many issues the analysis produced. The analysis flow has no
// distance evidence, so it cannot share the QAConfidence policy.
func AnalysisConfidence(relevantLaws, findings int) string {
	lawsScore := float64(relevantLaws) / analysisSignalCap
	if lawsScore > 1 {
		lawsScore = 1
	}

	findingsScore := float64(findings) / analysisSignalCap
	if findingsScore > 1 {
		findingsScore = 1
	}

	total := (lawsScore + findingsScore) / 2

	switch {
	case total > analysisHighScore:
		return ConfidenceHigh
	case total > analysisMediumScore:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
