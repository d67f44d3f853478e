package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestClaimCountInWindow(t *testing.T) {
	applicationDate := date(2024, 6, 1)

	t.Run("should return NoHistory for empty or absent contracts", func(t *testing.T) {
		assert.Equal(t, NoHistory, ClaimCountInWindow(History{}, applicationDate, 180))
		assert.Equal(t, NoHistory, ClaimCountInWindow(nil, applicationDate, 180))
	})

	t.Run("should count claims inside the window", func(t *testing.T) {
		contracts := History{
			map[string]any{"claim_id": 1, "claim_date": "01.01.2024"},
			map[string]any{"claim_id": 2, "claim_date": "31.05.2024"},
			map[string]any{"claim_id": 3, "claim_date": "01.01.2023"},
		}

		assert.Equal(t, int64(2), ClaimCountInWindow(contracts, applicationDate, 180))
	})

	t.Run("should count a claim dated exactly on the window boundary", func(t *testing.T) {
		boundary := applicationDate.AddDate(0, 0, -180).Format("02.01.2006")
		dayBefore := applicationDate.AddDate(0, 0, -181).Format("02.01.2006")
		contracts := History{
			map[string]any{"claim_id": 1, "claim_date": boundary},
			map[string]any{"claim_id": 2, "claim_date": dayBefore},
		}

		assert.Equal(t, int64(1), ClaimCountInWindow(contracts, applicationDate, 180))
	})

	t.Run("should skip malformed dates, missing claim ids and non-object elements", func(t *testing.T) {
		contracts := History{
			map[string]any{"claim_id": 1, "claim_date": "2024-05-01"},
			map[string]any{"claim_date": "01.05.2024"},
			map[string]any{"claim_id": 2, "claim_date": ""},
			map[string]any{"claim_id": 3, "claim_date": 20240501},
			"01.05.2024",
			map[string]any{"claim_id": 4, "claim_date": "01.05.2024"},
		}

		assert.Equal(t, int64(1), ClaimCountInWindow(contracts, applicationDate, 180))
	})

	t.Run("should return NoHistory when no claim qualifies", func(t *testing.T) {
		contracts := History{map[string]any{"claim_id": 1, "claim_date": "01.01.2020"}}

		assert.Equal(t, NoHistory, ClaimCountInWindow(contracts, applicationDate, 180))
	})

	t.Run("should return NoHistory when the application date is unknown", func(t *testing.T) {
		contracts := History{map[string]any{"claim_id": 1, "claim_date": "01.05.2024"}}

		assert.Equal(t, NoHistory, ClaimCountInWindow(contracts, time.Time{}, 180))
	})
}

func TestDisbursedBankLoanExposure(t *testing.T) {
	claim := map[string]any{"claim_id": 1, "claim_date": "01.01.2024"}

	t.Run("should return NoHistory for empty contracts", func(t *testing.T) {
		assert.Equal(t, NoHistory, DisbursedBankLoanExposure(History{}))
		assert.Equal(t, NoHistory, DisbursedBankLoanExposure(nil))
	})

	t.Run("should return NoHistory without claims even when loans exist", func(t *testing.T) {
		contracts := History{
			map[string]any{"bank": "ABC", "loan_summa": "1000", "contract_date": "01.01.2023"},
		}

		assert.Equal(t, NoHistory, DisbursedBankLoanExposure(contracts))
	})

	t.Run("should return NoLoans when claims exist but no loan qualifies", func(t *testing.T) {
		assert.Equal(t, NoLoans, DisbursedBankLoanExposure(History{claim}))
	})

	t.Run("should sum loans from banks that are not excluded", func(t *testing.T) {
		contracts := History{
			claim,
			map[string]any{"bank": "ABC", "loan_summa": "1000", "contract_date": "01.01.2023"},
			map[string]any{"bank": "XYZ", "loan_summa": 250.9, "contract_date": "02.02.2023"},
		}

		assert.Equal(t, int64(1250), DisbursedBankLoanExposure(contracts))
	})

	t.Run("should exclude listed banks and contracts without a bank", func(t *testing.T) {
		contracts := History{claim}
		for _, bank := range []string{"LIZ", "LOM", "MKO", "SUG"} {
			contracts = append(contracts, map[string]any{"bank": bank, "loan_summa": "1000", "contract_date": "01.01.2023"})
		}
		contracts = append(contracts,
			map[string]any{"bank": nil, "loan_summa": "1000", "contract_date": "01.01.2023"},
			map[string]any{"loan_summa": "1000", "contract_date": "01.01.2023"},
		)

		assert.Equal(t, NoLoans, DisbursedBankLoanExposure(contracts))
	})

	t.Run("should count claims carried by excluded bank contracts", func(t *testing.T) {
		contracts := History{
			map[string]any{"claim_id": 1, "claim_date": "01.01.2024", "bank": "LIZ", "loan_summa": "500", "contract_date": "01.01.2023"},
			map[string]any{"bank": "ABC", "loan_summa": "700", "contract_date": "01.01.2023"},
		}

		assert.Equal(t, int64(700), DisbursedBankLoanExposure(contracts))
	})

	t.Run("should skip non-numeric amounts and loans without a contract date", func(t *testing.T) {
		contracts := History{
			claim,
			map[string]any{"bank": "ABC", "loan_summa": "lots", "contract_date": "01.01.2023"},
			map[string]any{"bank": "ABC", "loan_summa": "300"},
			map[string]any{"bank": "ABC", "loan_summa": "", "contract_date": "01.01.2023"},
		}

		assert.Equal(t, NoLoans, DisbursedBankLoanExposure(contracts))
	})

	t.Run("should cap the total at the int64 maximum instead of wrapping", func(t *testing.T) {
		contracts := History{
			claim,
			map[string]any{"bank": "ABC", "loan_summa": "9223372036854775807", "contract_date": "01.01.2023"},
			map[string]any{"bank": "ABC", "loan_summa": "10", "contract_date": "01.01.2023"},
		}

		assert.Equal(t, int64(math.MaxInt64), DisbursedBankLoanExposure(contracts))
	})

	t.Run("should keep amounts larger than int64 as the int64 maximum", func(t *testing.T) {
		contracts := History{
			claim,
			map[string]any{"bank": "ABC", "loan_summa": "99999999999999999999", "contract_date": "01.01.2023"},
		}

		assert.Equal(t, int64(math.MaxInt64), DisbursedBankLoanExposure(contracts))
	})

	t.Run("should return NoLoans when the total is not positive", func(t *testing.T) {
		contracts := History{
			claim,
			map[string]any{"bank": "ABC", "loan_summa": "0", "contract_date": "01.01.2023"},
		}

		assert.Equal(t, NoLoans, DisbursedBankLoanExposure(contracts))
	})
}

func TestDaysSinceLastLoan(t *testing.T) {
	applicationDate := date(2024, 1, 1)
	claim := map[string]any{"claim_id": 1, "claim_date": "01.01.2024"}

	t.Run("should return NoHistory for empty contracts", func(t *testing.T) {
		assert.Equal(t, NoHistory, DaysSinceLastLoan(History{}, applicationDate))
	})

	t.Run("should return NoHistory without claims", func(t *testing.T) {
		contracts := History{map[string]any{"contract_date": "01.01.2023", "summa": "1000"}}

		assert.Equal(t, NoHistory, DaysSinceLastLoan(contracts, applicationDate))
	})

	t.Run("should return NoLoans without a loan with positive summa", func(t *testing.T) {
		contracts := History{
			claim,
			map[string]any{"contract_date": "01.01.2023", "summa": "-5"},
			map[string]any{"contract_date": "01.01.2023", "summa": "abc"},
			map[string]any{"contract_date": "01.01.2023", "loan_summa": "1000"},
		}

		assert.Equal(t, NoLoans, DaysSinceLastLoan(contracts, applicationDate))
	})

	t.Run("should measure from the latest qualifying loan", func(t *testing.T) {
		contracts := History{
			claim,
			map[string]any{"contract_date": "01.01.2023", "summa": "1000"},
			map[string]any{"contract_date": "02.12.2023", "summa": "10"},
			map[string]any{"contract_date": "31.12.2023", "summa": "0"},
		}

		assert.Equal(t, int64(30), DaysSinceLastLoan(contracts, applicationDate))
	})

	t.Run("should return a negative value for loans after the application", func(t *testing.T) {
		contracts := History{claim, map[string]any{"contract_date": "11.01.2024", "summa": "1"}}

		assert.Equal(t, int64(-10), DaysSinceLastLoan(contracts, applicationDate))
	})

	t.Run("should return NoLoans when the only valid loan has an unparseable date", func(t *testing.T) {
		contracts := History{claim, map[string]any{"contract_date": "2023-01-01", "summa": "100"}}

		assert.Equal(t, NoLoans, DaysSinceLastLoan(contracts, applicationDate))
	})
}

func TestCalculatorsNeverFailOnMalformedContracts(t *testing.T) {
	contracts := History{
		nil,
		42,
		[]any{"nested"},
		map[string]any{"claim_id": nil, "claim_date": nil, "bank": 12, "loan_summa": map[string]any{}, "contract_date": true, "summa": []any{1}},
		map[string]any{"claim_id": "x", "claim_date": 5, "bank": "ABC", "loan_summa": true, "contract_date": "bad", "summa": "1e3"},
	}

	assert.NotPanics(t, func() {
		ClaimCountInWindow(contracts, date(2024, 1, 1), 180)
		DisbursedBankLoanExposure(contracts)
		DaysSinceLastLoan(contracts, date(2024, 1, 1))
	})
}
