// Package render turns a scored result set into a channel-appropriate
// reply: a JSON envelope for HTTP, an HTML-formatted message with inline
// buttons for Telegram, and a plain-text message for WhatsApp. All three
// renderers are pure functions of their input — no I/O, no shared state —
// so the same result list always renders byte-identical output.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/kasioon/search-gateway/internal/types"
)

const naArabic = "غير محدد"
const naEnglish = "N/A"

func naFor(lang types.Language) string {
	if lang == types.LanguageEnglish {
		return naEnglish
	}
	return naArabic
}

// priceText renders a listing's price attribute, or the channel's "not
// specified" placeholder when absent — the one place a missing value is
// ever shown rather than simply omitted.
func priceText(listing *types.Listing, lang types.Language) string {
	price, ok := listing.Attribute("price")
	if !ok || !price.IsNumeric() {
		return naFor(lang)
	}
	currency, _ := listing.Attribute("currency")
	unit := currency.TextValue
	if unit == nil {
		unit = &price.Unit
	}
	if *unit == "" {
		return fmt.Sprintf("%.0f", *price.NumericValue)
	}
	return fmt.Sprintf("%.0f %s", *price.NumericValue, *unit)
}

// attributeLine renders the compact rooms/bathrooms/area/year/brand/mileage
// summary, omitting any key the listing doesn't carry.
func attributeLine(listing *types.Listing) string {
	var parts []string
	for _, slug := range []string{"rooms", "bathrooms", "area", "year", "brand", "mileage"} {
		v, ok := listing.Attribute(slug)
		if !ok {
			continue
		}
		if v.IsNumeric() {
			parts = append(parts, fmt.Sprintf("%s: %.0f", slug, *v.NumericValue))
		} else if v.TextValue != nil {
			parts = append(parts, fmt.Sprintf("%s: %s", slug, *v.TextValue))
		}
	}
	return strings.Join(parts, " · ")
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}

func locationText(listing *types.Listing) string {
	if listing.CityID == "" {
		return ""
	}
	return listing.CityID
}

func fallbackMessage(lang types.Language) string {
	if lang == types.LanguageEnglish {
		return "No exact matches. Showing the closest similar results."
	}
	return "لا توجد نتائج مطابقة تمامًا. إليك أقرب النتائج المشابهة."
}
