package sysinfo

// BelowThreshold reports whether free disk space is strictly below the
// configured threshold. At exactly the threshold, setup proceeds without
// prompting.
func BelowThreshold(freeGB, thresholdGB float64) bool {
	return freeGB < thresholdGB
}
