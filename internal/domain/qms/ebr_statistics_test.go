package qms

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestComputeEbrStatistics_Empty(t *testing.T) {
	stats := ComputeEbrStatistics(nil)
	assert.Equal(t, EbrStatistics{}, stats)
}

func TestComputeEbrStatistics(t *testing.T) {
	rows := []EbrScoreRow{
		{PassFailStatus: strPtr("pass"), ComplianceScore: decimal.NewNullDecimal(decimal.NewFromInt(90))},
		{PassFailStatus: strPtr("pass"), ComplianceScore: decimal.NewNullDecimal(decimal.NewFromInt(85))},
		{PassFailStatus: strPtr("fail"), ComplianceScore: decimal.NewNullDecimal(decimal.NewFromInt(40))},
		{PassFailStatus: strPtr("conditional")},
		{PassFailStatus: strPtr("PASS")},
		{},
	}
	stats := ComputeEbrStatistics(rows)

	assert.Equal(t, 6, stats.TotalRecords)
	assert.Equal(t, 2, stats.PassCount)
	assert.Equal(t, 1, stats.FailCount)
	assert.Equal(t, 1, stats.ConditionalCount)
	assert.Equal(t, 33.33, stats.ComplianceRate)
	assert.Equal(t, 71.67, stats.AverageComplianceScore)
}

func TestComputeEbrStatistics_RoundsHalfUp(t *testing.T) {
	rows := make([]EbrScoreRow, 0, 8)
	for i := 0; i < 8; i++ {
		rows = append(rows, EbrScoreRow{})
	}
	rows[0].PassFailStatus = strPtr("pass")
	stats := ComputeEbrStatistics(rows)
	// 1/8 = 12.5%
	assert.Equal(t, 12.5, stats.ComplianceRate)

	rows = []EbrScoreRow{
		{ComplianceScore: decimal.NewNullDecimal(decimal.RequireFromString("80.125"))},
	}
	assert.Equal(t, 80.13, ComputeEbrStatistics(rows).AverageComplianceScore)
	assert.Equal(t, 0.0, ComputeEbrStatistics(rows).ComplianceRate)
}
