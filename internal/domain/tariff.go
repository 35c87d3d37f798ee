package domain

import "github.com/shopspring/decimal"

// Currency is the billing currency for all invoices.
const Currency = "PHP"

var (
	tariffMotorcycle = decimal.NewFromInt(30)
	tariffDefault    = decimal.NewFromInt(50)
)

// TariffFor returns the fixed parking fee for a vehicle class. Motorcycles
// pay the low rate, every other class the flat default rate. Callers must
// reject amounts that do not match exactly.
func TariffFor(vehicle string) decimal.Decimal {
	if vehicle == "Motorcycle" {
		return tariffMotorcycle
	}
	return tariffDefault
}
