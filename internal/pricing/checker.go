package pricing

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/example/anistream/internal/analytics"
	"github.com/example/anistream/internal/catalog"
	"github.com/example/anistream/internal/store"
)

// Checker compares stored platform prices against the reference table
// and records the differences.
type Checker struct {
	Store     store.CatalogStore
	Analytics *analytics.Publisher
	Log       *zap.Logger
	Now       func() time.Time
}

func NewChecker(st store.CatalogStore, pub *analytics.Publisher, log *zap.Logger) *Checker {
	return &Checker{Store: st, Analytics: pub, Log: log, Now: time.Now}
}

// Change describes one detected price difference.
type Change struct {
	Platform         string                  `json:"platform"`
	OldMonthlyPrice  int                     `json:"oldMonthlyPrice"`
	NewMonthlyPrice  int                     `json:"newMonthlyPrice"`
	ChangeType       catalog.PriceChangeType `json:"changeType"`
	PercentageChange float64                 `json:"percentageChange"`
}

// Report summarizes one price check run.
type Report struct {
	Checked   int       `json:"checked"`
	Updated   int       `json:"updated"`
	Changes   []Change  `json:"changes"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Run checks every active platform with a reference entry. Platforms
// whose price moved get updated prices and an append-only history row;
// every checked platform gets its lastPriceCheck stamped, changed or
// not. A failure on one platform is logged and skipped.
func (c *Checker) Run(ctx context.Context) (Report, error) {
	now := c.Now().UTC()
	platforms, err := c.Store.ListPlatforms(ctx, true)
	if err != nil {
		return Report{}, err
	}

	report := Report{Changes: []Change{}, CheckedAt: now}
	var touched []string
	var history []catalog.PriceHistory

	for _, p := range platforms {
		ref, ok := ReferenceFor(p.Name)
		if !ok {
			continue
		}
		report.Checked++
		touched = append(touched, p.ID)

		if ref.MonthlyPrice == p.MonthlyPrice && annualEqual(p.AnnualPrice, ref.AnnualPrice) {
			continue
		}

		changeType := ClassifyChange(p.MonthlyPrice, ref.MonthlyPrice)
		pct := PercentageChange(p.MonthlyPrice, ref.MonthlyPrice)

		var newAnnual *int
		if ref.AnnualPrice > 0 {
			v := ref.AnnualPrice
			newAnnual = &v
		}
		if err := c.Store.UpdatePlatformPrices(ctx, p.ID, ref.MonthlyPrice, newAnnual, ref.FreeTrial, ref.FreeTrialDays, now); err != nil {
			c.Log.Warn("price update failed", zap.String("platform", p.Name), zap.Error(err))
			continue
		}
		report.Updated++

		oldMonthly := p.MonthlyPrice
		history = append(history, catalog.PriceHistory{
			PlatformID:       p.ID,
			OldMonthlyPrice:  &oldMonthly,
			NewMonthlyPrice:  ref.MonthlyPrice,
			OldAnnualPrice:   p.AnnualPrice,
			NewAnnualPrice:   newAnnual,
			ChangeType:       changeType,
			ChangeDate:       now,
			PercentageChange: pct,
		})
		report.Changes = append(report.Changes, Change{
			Platform:         p.Name,
			OldMonthlyPrice:  oldMonthly,
			NewMonthlyPrice:  ref.MonthlyPrice,
			ChangeType:       changeType,
			PercentageChange: pct,
		})
		c.Analytics.Publish(analytics.SubjectPriceChanged, "price_changed", "", map[string]any{
			"platform":          p.Name,
			"old_monthly_price": oldMonthly,
			"new_monthly_price": ref.MonthlyPrice,
			"change_type":       string(changeType),
			"percentage_change": pct,
		})
	}

	if len(history) > 0 {
		if err := c.Store.InsertPriceHistory(ctx, history); err != nil {
			c.Log.Warn("price history insert failed", zap.Error(err))
		}
	}
	if len(touched) > 0 {
		if err := c.Store.TouchPriceCheck(ctx, touched, now); err != nil {
			c.Log.Warn("price check stamp failed", zap.Error(err))
		}
	}
	return report, nil
}

// PercentageChange is the relative monthly price move in percent,
// rounded to two decimals. A zero old price yields 0 to avoid a
// meaningless division.
func PercentageChange(oldMonthly, newMonthly int) float64 {
	if oldMonthly == 0 {
		return 0
	}
	pct := float64(newMonthly-oldMonthly) / float64(oldMonthly) * 100
	return math.Round(pct*100) / 100
}

func annualEqual(stored *int, ref int) bool {
	if stored == nil {
		return ref == 0
	}
	return *stored == ref
}
