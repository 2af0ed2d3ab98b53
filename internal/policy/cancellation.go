// Package policy holds pure decision rules consulted by the workflow.
package policy

import (
	"time"

	"github.com/nurpe/staffing-contracts/internal/model"
)

// FeeWindow is the period before a contract starts in which backing out of a
// booked engagement is fee-bearing. The boundary is inclusive.
const FeeWindow = 48 * time.Hour

// MayIncurFee reports whether withdrawing the application now would carry a
// cancellation fee.
func MayIncurFee(application model.Application, contract model.Contract, now time.Time) bool {
	return application.Status == model.ApplicationStatusAccepted &&
		contract.Status == model.ContractStatusBooked &&
		withinFeeWindow(contract, now)
}

// ContractCancellationMayIncurFee is the institution-side counterpart: cancelling
// a booked contract inside the window is fee-bearing.
func ContractCancellationMayIncurFee(contract model.Contract, now time.Time) bool {
	return contract.Status == model.ContractStatusBooked && withinFeeWindow(contract, now)
}

func withinFeeWindow(contract model.Contract, now time.Time) bool {
	return contract.StartDate.Sub(now) <= FeeWindow
}
