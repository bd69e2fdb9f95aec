package admission

import (
	"fmt"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message catalog keys.
const (
	msgBulkOrder         = "admission.bulk_order"
	msgQuantityCap       = "admission.quantity_cap"
	msgPremiumShortfall  = "admission.premium_shortfall"
	msgLicensedShortfall = "admission.licensed_shortfall"
	msgOutOfStock        = "admission.out_of_stock"
)

// supportedLocales lists the locales with a registered catalog. The first
// entry is the fallback.
var supportedLocales = []language.Tag{language.English}

var localeMatcher = language.NewMatcher(supportedLocales)

func init() {
	en := language.English

	mustSetString(en, msgBulkOrder,
		"Your cart has %[1]d items, more than the %[2]d we can ship in one order. For bulk orders, please contact us.")
	mustSetString(en, msgQuantityCap,
		"Only %[1]d of each item outside the %[2]s category can be purchased per order.")

	// Args: missing, ratio, fantasy label, premium label.
	mustSet(en, msgPremiumShortfall, plural.Selectf(1, "%d",
		"=1", "Add 1 more %[3]s item to check out your %[4]s items. Each %[4]s item requires %[2]d %[3]s items.",
		"other", "Add %[1]d more %[3]s items to check out your %[4]s items. Each %[4]s item requires %[2]d %[3]s items.",
	))

	// Args: missing, ratio, fantasy label, licensed label.
	mustSet(en, msgLicensedShortfall, plural.Selectf(1, "%d",
		"=1", "Add 1 more %[3]s item to check out your %[4]s items. Every %[2]d %[4]s items require 1 %[3]s item.",
		"other", "Add %[1]d more %[3]s items to check out your %[4]s items. Every %[2]d %[4]s items require 1 %[3]s item.",
	))

	// Args: quoted titles, count.
	mustSet(en, msgOutOfStock, plural.Selectf(2, "%d",
		"=1", "%[1]s is out of stock.",
		"other", "%[1]s are out of stock.",
	))
}

func mustSetString(tag language.Tag, key, msg string) {
	if err := message.SetString(tag, key, msg); err != nil {
		panic(fmt.Sprintf("admission: register message %q: %v", key, err))
	}
}

func mustSet(tag language.Tag, key string, msg catalog.Message) {
	if err := message.Set(tag, key, msg); err != nil {
		panic(fmt.Sprintf("admission: register message %q: %v", key, err))
	}
}

// newPrinter returns a printer for the closest supported locale.
func newPrinter(tag language.Tag) *message.Printer {
	_, idx, _ := localeMatcher.Match(tag)
	return message.NewPrinter(supportedLocales[idx])
}

// quoteTitles renders line titles as a comma separated list of quoted names.
func quoteTitles(titles []string) string {
	quoted := make([]string, len(titles))
	for i, t := range titles {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, ", ")
}
