package config

// DomainConfig holds the catalog growth limits and naming rules.
type DomainConfig struct {
	// Bounded collection caps
	MaxIdentifierSet      int
	MaxSummaryValues      int
	MaxDayValues          int
	MaxAssociatedParams   int
	MaxParsedValueSetSize int

	// Persistence
	BatchSize int

	// Version suffix appended to every prefix
	CatalogVersion string
}

const (
	DefaultMaxIdentifierSet = 1000
	DefaultMaxSummaryValues = 50
	DefaultMaxDayValues     = 20
	DefaultBatchSize        = 20
	DefaultCatalogVersion   = "v3"

	// MaxStoreBatchSize is the hard per-request item limit of the catalog store.
	MaxStoreBatchSize = 25
)

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxIdentifierSet:      DefaultMaxIdentifierSet,
		MaxSummaryValues:      DefaultMaxSummaryValues,
		MaxDayValues:          DefaultMaxDayValues,
		MaxAssociatedParams:   DefaultMaxIdentifierSet,
		MaxParsedValueSetSize: DefaultMaxIdentifierSet,
		BatchSize:             DefaultBatchSize,
		CatalogVersion:        DefaultCatalogVersion,
	}
}

// WithOverrides returns a copy with the non-zero values applied.
func (c *DomainConfig) WithOverrides(batchSize int, version string) *DomainConfig {
	out := *c
	if batchSize > 0 {
		out.BatchSize = batchSize
	}
	if version != "" {
		out.CatalogVersion = version
	}
	return &out
}
