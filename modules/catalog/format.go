package catalog

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.French)

// FormatPrice renders a Money value for display, e.g. "29,90 EUR".
// Free amounts render as "gratuit".
func FormatPrice(m Money) string {
	if m.Amount == 0 {
		return "gratuit"
	}
	units := float64(m.Amount) / 100
	return printer.Sprintf("%.2f %s", units, m.Currency)
}

// FormatQuota renders a patient quota, with the Unlimited sentinel spelled
// out instead of leaking -1 to users.
func FormatQuota(maxPatients int64) string {
	if maxPatients == Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", maxPatients)
}

// FormatDaysLeft renders a remaining-days count for display.
func FormatDaysLeft(days int) string {
	switch days {
	case 0:
		return "0 days left"
	case 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}
