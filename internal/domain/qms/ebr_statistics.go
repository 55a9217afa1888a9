package qms

import (
	"github.com/shopspring/decimal"
)

// EbrScoreRow is the slice of an eBR needed for statistics
type EbrScoreRow struct {
	PassFailStatus  *string
	ComplianceScore decimal.NullDecimal
}

// EbrStatistics summarizes verdicts across all eBR records
type EbrStatistics struct {
	TotalRecords           int     `json:"total_records"`
	PassCount              int     `json:"pass_count"`
	FailCount              int     `json:"fail_count"`
	ConditionalCount       int     `json:"conditional_count"`
	ComplianceRate         float64 `json:"compliance_rate"`
	AverageComplianceScore float64 `json:"average_compliance_score"`
}

var hundred = decimal.NewFromInt(100)

// roundHalfUp2 rounds to two decimals, half up
func roundHalfUp2(d decimal.Decimal) float64 {
	return d.Mul(hundred).Add(decimal.NewFromFloat(0.5)).Floor().Div(hundred).InexactFloat64()
}

// ComputeEbrStatistics counts verdicts by exact match on pass/fail/conditional
// and averages the non-null scores. Empty inputs produce zeros.
func ComputeEbrStatistics(rows []EbrScoreRow) EbrStatistics {
	stats := EbrStatistics{TotalRecords: len(rows)}
	scoreSum := decimal.Zero
	scored := 0

	for _, row := range rows {
		if row.PassFailStatus != nil {
			switch PassFailStatus(*row.PassFailStatus) {
			case PassFailPass:
				stats.PassCount++
			case PassFailFail:
				stats.FailCount++
			case PassFailConditional:
				stats.ConditionalCount++
			}
		}
		if row.ComplianceScore.Valid {
			scoreSum = scoreSum.Add(row.ComplianceScore.Decimal)
			scored++
		}
	}

	if stats.TotalRecords > 0 {
		rate := decimal.NewFromInt(int64(stats.PassCount)).Mul(hundred).
			DivRound(decimal.NewFromInt(int64(stats.TotalRecords)), 8)
		stats.ComplianceRate = roundHalfUp2(rate)
	}
	if scored > 0 {
		avg := scoreSum.DivRound(decimal.NewFromInt(int64(scored)), 8)
		stats.AverageComplianceScore = roundHalfUp2(avg)
	}
	return stats
}
