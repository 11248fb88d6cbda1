package domain

// MarketBundle is the fanned-in output of the data-retrieval collaborator:
// the three raw price series plus fundamentals, with degradation flags. The
// engine consumes it read-only and is agnostic to which provider served it.
type MarketBundle struct {
	Asset            Series
	Benchmark        Series
	Gold             Series
	AssetName        string
	Fundamentals     Fundamentals
	Provider         Provider
	IsGoldProxy      bool
	BenchmarkMissing bool
}
