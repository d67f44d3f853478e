package features

import "time"

// Sentinel feature values.
const (
	// NoHistory marks an applicant without contracts or without claims.
	NoHistory int64 = -3
	// NoLoans marks an applicant with claims but no qualifying loan.
	NoLoans int64 = -1
)

// DefaultClaimWindowDays is the trailing window used by tot_claim_cnt_l180d.
const DefaultClaimWindowDays = 180

// Contracts from these banks, or without a bank, are left out of the disbursed exposure.
var excludedBanks = map[string]bool{
	"LIZ": true,
	"LOM": true,
	"MKO": true,
	"SUG": true,
}

func hasClaim(c Contract) bool {
	return c.Has("claim_id") && c.Has("claim_date")
}

func isExcludedBank(c Contract) bool {
	if !c.Has("bank") {
		return true
	}
	bank, ok := c.Text("bank")
	return ok && excludedBanks[bank]
}

// ClaimCountInWindow counts claims dated on or after applicationDate minus windowDays.
// A zero applicationDate means it could not be parsed. Having no claim in the window
// is reported as NoHistory, same as having no contracts.
func ClaimCountInWindow(contracts History, applicationDate time.Time, windowDays int) int64 {
	if len(contracts) == 0 {
		return NoHistory
	}
	if applicationDate.IsZero() {
		return NoHistory
	}

	threshold := applicationDate.AddDate(0, 0, -windowDays)
	var count int64
	for _, element := range contracts {
		contract, ok := asContract(element)
		if !ok || !contract.Has("claim_id") || !contract.Filled("claim_date") {
			continue
		}
		claimDate, ok := contract.Date("claim_date")
		if !ok {
			continue
		}
		if !claimDate.Before(threshold) {
			count++
		}
	}

	if count > 0 {
		return count
	}
	return NoHistory
}

// DisbursedBankLoanExposure sums loan_summa over contracts with a contract_date whose
// bank is not excluded. It needs at least one claim in the history.
func DisbursedBankLoanExposure(contracts History) int64 {
	if len(contracts) == 0 {
		return NoHistory
	}

	var (
		totalExposure int64
		loanCount     int
		hasClaims     bool
	)
	for _, element := range contracts {
		contract, ok := asContract(element)
		if !ok {
			continue
		}
		if hasClaim(contract) {
			hasClaims = true
		}
		if isExcludedBank(contract) || !contract.Filled("loan_summa") || !contract.Filled("contract_date") {
			continue
		}
		amount, ok := contract.Amount("loan_summa")
		if !ok {
			continue
		}
		totalExposure = addSaturated(totalExposure, amount)
		loanCount++
	}

	switch {
	case !hasClaims:
		return NoHistory
	case loanCount == 0:
		return NoLoans
	case totalExposure > 0:
		return totalExposure
	default:
		return NoLoans
	}
}

// DaysSinceLastLoan returns the days from the latest contract_date among contracts
// with a positive summa to applicationDate. The result is negative when that loan
// post-dates the application.
func DaysSinceLastLoan(contracts History, applicationDate time.Time) int64 {
	if len(contracts) == 0 {
		return NoHistory
	}

	var (
		lastLoanDate time.Time
		hasLastLoan  bool
		hasValidLoan bool
		hasClaims    bool
	)
	for _, element := range contracts {
		contract, ok := asContract(element)
		if !ok {
			continue
		}
		if hasClaim(contract) {
			hasClaims = true
		}
		if !contract.Filled("contract_date") || !contract.Filled("summa") {
			continue
		}
		summa, ok := contract.Amount("summa")
		if !ok || summa <= 0 {
			continue
		}
		hasValidLoan = true
		contractDate, ok := contract.Date("contract_date")
		if !ok {
			continue
		}
		if !hasLastLoan || contractDate.After(lastLoanDate) {
			lastLoanDate = contractDate
			hasLastLoan = true
		}
	}

	switch {
	case !hasClaims:
		return NoHistory
	case !hasValidLoan:
		return NoLoans
	case hasLastLoan && !applicationDate.IsZero():
		return daysBetween(lastLoanDate, applicationDate)
	default:
		return NoLoans
	}
}
