package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validTransaction() Transaction {
	return Transaction{
		Vendor:   "Coffee Shop",
		Amount:   dec("12.50"),
		Category: "Staff Welfare",
		Date:     NewDate(2024, 6, 1),
		Source:   SourceManualEntry,
	}
}

func TestTransactionValidate(t *testing.T) {
	require.NoError(t, validTransaction().Validate())

	t.Run("empty vendor", func(t *testing.T) {
		tx := validTransaction()
		tx.Vendor = "   "
		assert.ErrorIs(t, tx.Validate(), ErrEmptyVendor)
	})

	t.Run("zero amount", func(t *testing.T) {
		tx := validTransaction()
		tx.Amount = decimal.Zero
		assert.ErrorIs(t, tx.Validate(), ErrInvalidAmount)
	})

	t.Run("negative amount", func(t *testing.T) {
		tx := validTransaction()
		tx.Amount = dec("-5.00")
		assert.ErrorIs(t, tx.Validate(), ErrInvalidAmount)
	})

	t.Run("zero date", func(t *testing.T) {
		tx := validTransaction()
		tx.Date = Date{}
		assert.ErrorIs(t, tx.Validate(), ErrInvalidDate)
	})

	t.Run("bad source", func(t *testing.T) {
		tx := validTransaction()
		tx.Source = "csv_import"
		assert.ErrorIs(t, tx.Validate(), ErrInvalidSource)
	})
}

func TestBudgetValidate(t *testing.T) {
	require.NoError(t, Budget{Category: "Utilities", MonthlyLimit: dec("100")}.Validate())
	require.NoError(t, Budget{Category: "Utilities", MonthlyLimit: decimal.Zero}.Validate())
	assert.ErrorIs(t, Budget{Category: "Utilities", MonthlyLimit: dec("-1")}.Validate(), ErrNegativeLimit)
	assert.ErrorIs(t, Budget{Category: "", MonthlyLimit: dec("10")}.Validate(), ErrUnknownCategory)
}

func TestClassifyBoundaries(t *testing.T) {
	limit := dec("100")
	cases := []struct {
		spent  string
		pct    string
		status Status
	}{
		{"80.00", "80", StatusOnTrack},   // exactly 80% stays on track
		{"80.01", "80.01", StatusWarning},
		{"100.00", "100", StatusWarning}, // exactly 100% is not yet over
		{"100.01", "100.01", StatusOverBudget},
		{"0", "0", StatusOnTrack},
	}
	for _, tc := range cases {
		pct, status := Classify(limit, dec(tc.spent))
		assert.True(t, pct.Equal(dec(tc.pct)), "spent %s: pct %s != %s", tc.spent, pct, tc.pct)
		assert.Equal(t, tc.status, status, "spent %s", tc.spent)
	}
}

func TestClassifyZeroLimit(t *testing.T) {
	// Policy: zero limit never divides, percentage resolves to 0, on_track.
	pct, status := Classify(decimal.Zero, dec("42.00"))
	assert.True(t, pct.IsZero())
	assert.Equal(t, StatusOnTrack, status)
}

func TestNewBudgetStatus(t *testing.T) {
	b := Budget{Category: "Staff Welfare", MonthlyLimit: dec("50")}
	st := NewBudgetStatus(b, dec("12.50"))
	assert.Equal(t, "Staff Welfare", st.Category)
	assert.True(t, st.Spent.Equal(dec("12.50")))
	assert.True(t, st.Remaining.Equal(dec("37.50")))
	assert.True(t, st.Percentage.Equal(dec("25")))
	assert.Equal(t, StatusOnTrack, st.Status)
}

func TestDateParsing(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", d.String())
	assert.True(t, d.InMonth(2024, 6))
	assert.False(t, d.InMonth(2024, 5))

	_, err = ParseDate("01/06/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestTaxonomy(t *testing.T) {
	tax := NewTaxonomy([]string{"Utilities", " Utilities ", "Transportation", "", "Miscellaneous"})
	assert.Equal(t, 3, tax.Len())
	assert.True(t, tax.Contains("Utilities"))
	assert.True(t, tax.Contains(" Transportation "))
	assert.False(t, tax.Contains("NotARealCategory"))
	assert.False(t, tax.Contains("utilities")) // membership is case-sensitive
	assert.Equal(t, []string{"Utilities", "Transportation", "Miscellaneous"}, tax.Names())
}
