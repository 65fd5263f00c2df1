package domain

// VerificationResult is the structured judgement returned by the remote
// vision classifier for a single capture attempt. It is transient and never
// persisted. Confidence is advisory only; downstream decisions use Match
// alone.
type VerificationResult struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}
