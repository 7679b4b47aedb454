package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridership/internal/config"
	"ridership/internal/models"
)

var testYears = config.YearRange{Start: 2019, End: 2025}

func strPtr(s string) *string {
	return &s
}

func treeRecord(fields ...string) models.TreeRecord {
	var rec models.TreeRecord
	for i := 0; i+1 < len(fields); i += 2 {
		rec.Set(fields[i], strPtr(fields[i+1]))
	}

	return rec
}

func TestValidator_CheckTreeDate(t *testing.T) {
	v := NewValidator(testYears)

	tests := []struct {
		name     string
		rec      models.TreeRecord
		wantYear int
		wantErr  error
	}{
		{name: "lower bound included", rec: treeRecord("date", "2019-01-01T00:00:00"), wantYear: 2019},
		{name: "upper bound included", rec: treeRecord("date", "2025-12-31T00:00:00"), wantYear: 2025},
		{name: "day before range", rec: treeRecord("date", "2018-12-31T00:00:00"), wantYear: 2018, wantErr: ErrYearOutOfRange},
		{name: "after range", rec: treeRecord("date", "2026-01-01"), wantYear: 2026, wantErr: ErrYearOutOfRange},
		{name: "no date field", rec: treeRecord("route", "22"), wantErr: ErrMissingDate},
		{name: "empty date", rec: treeRecord("date", ""), wantErr: ErrMissingDate},
		{name: "short date", rec: treeRecord("date", "20"), wantErr: ErrUnparseableYear},
		{name: "non-numeric year", rec: treeRecord("date", "May 1, 2020"), wantErr: ErrUnparseableYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, err := v.CheckTreeDate(&tt.rec)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantYear, year)
		})
	}
}

func TestValidator_CheckTreeDate_NullDate(t *testing.T) {
	v := NewValidator(testYears)

	var rec models.TreeRecord
	rec.Set("date", nil)

	_, err := v.CheckTreeDate(&rec)
	assert.ErrorIs(t, err, ErrMissingDate)
}

func TestValidator_ValidateRouteHeader(t *testing.T) {
	v := NewValidator(testYears)

	header := []string{"Calendar_Year", "Calendar_Month", "Route", "Average_Daily_Ridership", "Mode"}
	require.NoError(t, v.ValidateRouteHeader(header))

	err := v.ValidateRouteHeader([]string{"Calendar_Year", "Route", "Average_Daily_Ridership"})
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Calendar_Month")
}
