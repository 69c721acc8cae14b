package service

import (
	"fmt"
	"time"

	"tanapark/internal/domain"
)

// BuildReceipt assembles the customer-facing receipt for a checked-out or
// newly registered vehicle.
func BuildReceipt(vehicle *domain.ParkedVehicle, fee *domain.FeeBreakdown) *domain.Receipt {
	return &domain.Receipt{
		VehicleID:           vehicle.ID,
		Plate:               vehicle.Plate,
		VehicleType:         vehicle.VehicleType,
		ServiceMode:         vehicle.ServiceMode,
		DurationTier:        vehicle.DurationTier,
		PackageEndDate:      vehicle.PackageEndDate,
		ParkedAt:            vehicle.ParkedAt,
		CheckedOutAt:        vehicle.CheckedOutAt,
		DurationDescription: fee.DurationDescription,
		BaseAmount:          fee.BaseAmount,
		VATAmount:           fee.VATAmount,
		TotalAmount:         fee.TotalAmount,
		PaymentMethod:       vehicle.PaymentMethod,
		PaymentReference:    vehicle.PaymentReference,
		CreatedAt:           time.Now(),
	}
}

// FormatReceipt renders the receipt as plain text (print slip).
func FormatReceipt(receipt *domain.Receipt) string {
	out := `
=====================================
         TANAPARK RECEIPT
=====================================
Plate:   ` + receipt.Plate.String() + `
Type:    ` + string(receipt.VehicleType) + `
Date:    ` + receipt.CreatedAt.Format("Jan 02, 2006 3:04 PM") + `
`
	if receipt.ServiceMode == domain.ServiceModePackage {
		out += `
PACKAGE
-------------------------------------
Tier:       ` + string(receipt.DurationTier) + `
Valid to:   ` + receipt.PackageEndDate.Format("Jan 02, 2006") + `
`
	} else {
		out += `
PARKING
-------------------------------------
In:         ` + receipt.ParkedAt.Format("Jan 02, 2006 3:04 PM") + `
Out:        ` + receipt.CheckedOutAt.Format("Jan 02, 2006 3:04 PM") + `
Duration:   ` + receipt.DurationDescription + `
`
	}

	out += `
FEE BREAKDOWN
-------------------------------------
Base:             ` + formatETB(receipt.BaseAmount) + `
VAT:              ` + formatETB(receipt.VATAmount) + `
-------------------------------------
TOTAL:            ` + formatETB(receipt.TotalAmount) + `

PAYMENT
-------------------------------------
Method:    ` + string(receipt.PaymentMethod) + `
`
	if receipt.PaymentReference != "" {
		out += `Reference: ` + receipt.PaymentReference + "\n"
	}

	out += `
=====================================
   Thank you for parking with us!
=====================================
`
	return out
}

func formatETB(v float64) string {
	return fmt.Sprintf("%.2f ETB", v)
}
