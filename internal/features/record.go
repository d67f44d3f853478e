package features

import (
	"github.com/ThiagoRGoveia/contract-features/internal/models"
)

// Calculator derives the feature row of a single application. It holds no state
// between rows and is safe to share across goroutines.
type Calculator struct {
	ClaimWindowDays int
}

func NewCalculator(claimWindowDays int) Calculator {
	if claimWindowDays <= 0 {
		claimWindowDays = DefaultClaimWindowDays
	}
	return Calculator{ClaimWindowDays: claimWindowDays}
}

// Compute decodes the contracts of app once and runs the three calculators on them.
func (c Calculator) Compute(app *models.Application) *models.FeatureRow {
	contracts := DecodeContracts(app.Contracts)

	// zero when unparseable, the calculators fall back to their sentinels
	applicationDate, _ := ParseDate(app.ApplicationDate, ISODate)

	return &models.FeatureRow{
		ID:                app.ID,
		ApplicationDate:   app.ApplicationDate,
		TotClaimCntL180d:  ClaimCountInWindow(contracts, applicationDate, c.ClaimWindowDays),
		DisbBankLoanWoTbc: DisbursedBankLoanExposure(contracts),
		DaySinLastLoan:    DaysSinceLastLoan(contracts, applicationDate),
		FileID:            app.FileID,
		Seq:               app.Seq,
		CheckSum:          app.CheckSum,
	}
}
