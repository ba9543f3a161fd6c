// Package pricing computes lowest-price views over availability and
// runs the scheduled price check against the reference table.
package pricing

// referencePrice is the current published JPY price of a platform.
// This table is the source of truth for the price check job until a
// live pricing feed exists.
type referencePrice struct {
	MonthlyPrice  int
	AnnualPrice   int // 0 = no annual plan
	FreeTrial     bool
	FreeTrialDays int
}

var referencePrices = map[string]referencePrice{
	"crunchyroll":   {MonthlyPrice: 1025, AnnualPrice: 10800, FreeTrial: true, FreeTrialDays: 14},
	"netflix":       {MonthlyPrice: 1490},
	"amazon-prime":  {MonthlyPrice: 600, AnnualPrice: 5900, FreeTrial: true, FreeTrialDays: 30},
	"disney-plus":   {MonthlyPrice: 990, AnnualPrice: 9900},
	"hulu":          {MonthlyPrice: 1026, FreeTrial: true, FreeTrialDays: 14},
	"u-next":        {MonthlyPrice: 2189, FreeTrial: true, FreeTrialDays: 31},
	"dazn":          {MonthlyPrice: 4200, AnnualPrice: 32000},
	"abema-premium": {MonthlyPrice: 960, FreeTrial: true, FreeTrialDays: 14},
}

// ReferenceFor returns the published price for a platform slug.
func ReferenceFor(name string) (referencePrice, bool) {
	p, ok := referencePrices[name]
	return p, ok
}
