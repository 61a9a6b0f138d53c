package render

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

const telegramMaxListings = 5

// TelegramRenderer builds HTML-formatted messages plus
// tgbotapi.InlineKeyboardMarkup buttons, shared with the live bot adapter
// in internal/channel/telegram so both speak the same button model.
type TelegramRenderer struct{}

// NewTelegramRenderer constructs the Telegram channel renderer
func NewTelegramRenderer() interfaces.ChannelRenderer {
	return &TelegramRenderer{}
}

func (r *TelegramRenderer) Channel() types.Channel { return types.ChannelTelegram }

func (r *TelegramRenderer) RenderResults(ctx context.Context, results []*types.RankedResult, strategy types.SearchStrategy, total int, lang types.Language) (*types.ChannelReply, error) {
	if len(results) == 0 {
		return &types.ChannelReply{
			Channel: types.ChannelTelegram,
			Text:    fallbackMessage(lang),
			Actions: []types.ChannelAction{newSearchAction(lang)},
		}, nil
	}

	shown := results
	if len(shown) > telegramMaxListings {
		shown = shown[:telegramMaxListings]
	}

	var b strings.Builder
	for i, res := range shown {
		writeListingBlock(&b, res.Listing, lang)
		if i < len(shown)-1 {
			b.WriteString("\n\n")
		}
	}

	var actions []types.ChannelAction
	if total > telegramMaxListings {
		actions = append(actions, types.ChannelAction{Label: viewAllLabel(lang), Payload: "view_all"})
	}
	actions = append(actions, newSearchAction(lang))
	for i, res := range shown {
		if i >= 2 {
			break
		}
		actions = append(actions, types.ChannelAction{
			Label:   truncate(res.Listing.Title, 30),
			Payload: "search:" + res.Listing.Title,
		})
	}

	return &types.ChannelReply{Channel: types.ChannelTelegram, Text: b.String(), Actions: actions}, nil
}

func (r *TelegramRenderer) RenderListings(ctx context.Context, listings []*types.Listing, lang types.Language) (*types.ChannelReply, error) {
	shown := listings
	if len(shown) > telegramMaxListings {
		shown = shown[:telegramMaxListings]
	}
	var b strings.Builder
	for i, l := range shown {
		writeListingBlock(&b, l, lang)
		if i < len(shown)-1 {
			b.WriteString("\n\n")
		}
	}
	return &types.ChannelReply{Channel: types.ChannelTelegram, Text: b.String()}, nil
}

func (r *TelegramRenderer) RenderOffices(ctx context.Context, offices []*types.Office, lang types.Language) (*types.ChannelReply, error) {
	var b strings.Builder
	for i, o := range offices {
		b.WriteString(fmt.Sprintf("<b>%s</b>\n%s", escapeHTML(o.Name), escapeHTML(o.URL())))
		if i < len(offices)-1 {
			b.WriteString("\n\n")
		}
	}
	return &types.ChannelReply{Channel: types.ChannelTelegram, Text: b.String()}, nil
}

func (r *TelegramRenderer) RenderOffice(ctx context.Context, office *types.Office, lang types.Language) (*types.ChannelReply, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b>\n%s", escapeHTML(office.Name), escapeHTML(office.Phone)))
	b.WriteString("\n" + escapeHTML(office.URL()))
	if lang == types.LanguageEnglish {
		b.WriteString(fmt.Sprintf("\n%d active listings, %d total", office.ActiveListingsCount, office.TotalListingsCount))
	} else {
		b.WriteString(fmt.Sprintf("\n%d إعلان نشط من أصل %d", office.ActiveListingsCount, office.TotalListingsCount))
	}
	return &types.ChannelReply{Channel: types.ChannelTelegram, Text: b.String()}, nil
}

func (r *TelegramRenderer) RenderError(ctx context.Context, err error, lang types.Language) *types.ChannelReply {
	msg := "حدث خطأ أثناء تنفيذ طلبك. حاول مرة أخرى."
	if lang == types.LanguageEnglish {
		msg = "Something went wrong handling your request. Please try again."
	}
	return &types.ChannelReply{Channel: types.ChannelTelegram, Text: msg}
}

func (r *TelegramRenderer) RenderGreeting(ctx context.Context, lang types.Language) *types.ChannelReply {
	msg := "مرحبًا! أخبرني عن الإعلان الذي تبحث عنه."
	if lang == types.LanguageEnglish {
		msg = "Hi! Tell me what you're looking for."
	}
	return &types.ChannelReply{Channel: types.ChannelTelegram, Text: msg}
}

func (r *TelegramRenderer) RenderHelp(ctx context.Context, lang types.Language) *types.ChannelReply {
	msg := "جرّب كتابة شيء مثل: شقة للإيجار بدمشق 3 غرف."
	if lang == types.LanguageEnglish {
		msg = "Try something like: \"apartment for rent in Damascus, 3 rooms\"."
	}
	return &types.ChannelReply{Channel: types.ChannelTelegram, Text: msg}
}

func writeListingBlock(b *strings.Builder, l *types.Listing, lang types.Language) {
	fmt.Fprintf(b, "<b>%s</b>\n", escapeHTML(l.Title))
	fmt.Fprintf(b, "%s: %s\n", priceLabel(lang), escapeHTML(priceText(l, lang)))
	if loc := locationText(l); loc != "" {
		fmt.Fprintf(b, "%s\n", escapeHTML(loc))
	}
	if line := attributeLine(l); line != "" {
		fmt.Fprintf(b, "%s\n", escapeHTML(line))
	}
	fmt.Fprintf(b, `<a href="%s">%s</a>`, l.URL(), viewLabel(lang))
}

func priceLabel(lang types.Language) string {
	if lang == types.LanguageEnglish {
		return "Price"
	}
	return "السعر"
}

func viewLabel(lang types.Language) string {
	if lang == types.LanguageEnglish {
		return "View listing"
	}
	return "عرض الإعلان"
}

func viewAllLabel(lang types.Language) string {
	if lang == types.LanguageEnglish {
		return "View all on website"
	}
	return "عرض الكل على الموقع"
}

func newSearchAction(lang types.Language) types.ChannelAction {
	label := "بحث جديد"
	if lang == types.LanguageEnglish {
		label = "New search"
	}
	return types.ChannelAction{Label: label, Payload: "new_search"}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// ToInlineKeyboard converts a ChannelReply's actions into the
// tgbotapi.InlineKeyboardMarkup the live bot adapter attaches to outgoing
// messages, so the renderer and the bot client share one button model
// instead of keeping parallel copies.
func ToInlineKeyboard(actions []types.ChannelAction) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, a := range actions {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(a.Label, a.Payload))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

var _ interfaces.ChannelRenderer = (*TelegramRenderer)(nil)
