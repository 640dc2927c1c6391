package iconloader

// Stats accumulates one icon-load batch's counters for the debug summary
// the worker logs when a batch drains.
type Stats struct {
	BatchID           uint64
	TotalRequests     uint64
	VisibleRequests   uint64
	CacheHits         uint64
	UniqueIconsQueued uint64
	Extracted         uint64
	ExtractFailed     uint64
	Posted            uint64
}

// Merge folds the build-phase numbers into the batch stats.
func (s *Stats) Merge(result BuildResult) {
	s.TotalRequests += uint64(result.TotalNeeded)
	s.VisibleRequests += uint64(result.VisibleNeeded)
	s.UniqueIconsQueued += uint64(len(result.Queue))
	for _, indices := range result.StampedIndices {
		s.CacheHits += uint64(len(indices))
	}
}
