package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

const whatsappMaxListings = 3
const ruleLine = "――――――――――"

// WhatsAppRenderer produces plain-text messages with asterisk-bold and
// rule-line separators; WhatsApp has no inline keyboard, so pagination is
// appended as a plain website link instead of buttons. No suggestions are
// included.
type WhatsAppRenderer struct{}

// NewWhatsAppRenderer constructs the WhatsApp channel renderer
func NewWhatsAppRenderer() interfaces.ChannelRenderer {
	return &WhatsAppRenderer{}
}

func (r *WhatsAppRenderer) Channel() types.Channel { return types.ChannelWhatsApp }

func (r *WhatsAppRenderer) RenderResults(ctx context.Context, results []*types.RankedResult, strategy types.SearchStrategy, total int, lang types.Language) (*types.ChannelReply, error) {
	if len(results) == 0 {
		return &types.ChannelReply{Channel: types.ChannelWhatsApp, Text: fallbackMessage(lang)}, nil
	}

	shown := results
	if len(shown) > whatsappMaxListings {
		shown = shown[:whatsappMaxListings]
	}

	var b strings.Builder
	for i, res := range shown {
		writeWhatsAppBlock(&b, res.Listing, lang)
		if i < len(shown)-1 {
			b.WriteString("\n" + ruleLine + "\n")
		}
	}
	if total > whatsappMaxListings {
		b.WriteString("\n" + ruleLine + "\n")
		b.WriteString(moreResultsText(lang))
	}

	return &types.ChannelReply{Channel: types.ChannelWhatsApp, Text: b.String()}, nil
}

func (r *WhatsAppRenderer) RenderListings(ctx context.Context, listings []*types.Listing, lang types.Language) (*types.ChannelReply, error) {
	shown := listings
	if len(shown) > whatsappMaxListings {
		shown = shown[:whatsappMaxListings]
	}
	var b strings.Builder
	for i, l := range shown {
		writeWhatsAppBlock(&b, l, lang)
		if i < len(shown)-1 {
			b.WriteString("\n" + ruleLine + "\n")
		}
	}
	return &types.ChannelReply{Channel: types.ChannelWhatsApp, Text: b.String()}, nil
}

func (r *WhatsAppRenderer) RenderOffices(ctx context.Context, offices []*types.Office, lang types.Language) (*types.ChannelReply, error) {
	var b strings.Builder
	for i, o := range offices {
		b.WriteString(fmt.Sprintf("*%s*\n%s", o.Name, o.URL()))
		if i < len(offices)-1 {
			b.WriteString("\n" + ruleLine + "\n")
		}
	}
	return &types.ChannelReply{Channel: types.ChannelWhatsApp, Text: b.String()}, nil
}

func (r *WhatsAppRenderer) RenderOffice(ctx context.Context, office *types.Office, lang types.Language) (*types.ChannelReply, error) {
	countsLine := fmt.Sprintf("%d إعلان نشط من أصل %d", office.ActiveListingsCount, office.TotalListingsCount)
	if lang == types.LanguageEnglish {
		countsLine = fmt.Sprintf("%d active listings, %d total", office.ActiveListingsCount, office.TotalListingsCount)
	}
	return &types.ChannelReply{
		Channel: types.ChannelWhatsApp,
		Text:    fmt.Sprintf("*%s*\n%s\n%s\n%s", office.Name, office.Phone, office.URL(), countsLine),
	}, nil
}

func (r *WhatsAppRenderer) RenderError(ctx context.Context, err error, lang types.Language) *types.ChannelReply {
	msg := "حدث خطأ أثناء تنفيذ طلبك. حاول مرة أخرى."
	if lang == types.LanguageEnglish {
		msg = "Something went wrong handling your request. Please try again."
	}
	return &types.ChannelReply{Channel: types.ChannelWhatsApp, Text: msg}
}

func (r *WhatsAppRenderer) RenderGreeting(ctx context.Context, lang types.Language) *types.ChannelReply {
	msg := "مرحبًا! أخبرني عن الإعلان الذي تبحث عنه."
	if lang == types.LanguageEnglish {
		msg = "Hi! Tell me what you're looking for."
	}
	return &types.ChannelReply{Channel: types.ChannelWhatsApp, Text: msg}
}

func (r *WhatsAppRenderer) RenderHelp(ctx context.Context, lang types.Language) *types.ChannelReply {
	msg := "جرّب كتابة شيء مثل: شقة للإيجار بدمشق 3 غرف."
	if lang == types.LanguageEnglish {
		msg = "Try something like: \"apartment for rent in Damascus, 3 rooms\"."
	}
	return &types.ChannelReply{Channel: types.ChannelWhatsApp, Text: msg}
}

func writeWhatsAppBlock(b *strings.Builder, l *types.Listing, lang types.Language) {
	fmt.Fprintf(b, "*%s*\n", escapeWhatsApp(l.Title))
	fmt.Fprintf(b, "%s: %s\n", priceLabel(lang), priceText(l, lang))
	if loc := locationText(l); loc != "" {
		fmt.Fprintf(b, "%s\n", loc)
	}
	if line := attributeLine(l); line != "" {
		fmt.Fprintf(b, "%s\n", line)
	}
	fmt.Fprintf(b, "%s", l.URL())
}

// escapeWhatsApp neutralizes WhatsApp's markdown-like formatting
// characters in user-supplied text so a listing title can't break out of
// the bold wrapper it's rendered inside.
func escapeWhatsApp(s string) string {
	replacer := strings.NewReplacer("*", "\\*", "_", "\\_", "~", "\\~", "`", "\\`")
	return replacer.Replace(s)
}

func moreResultsText(lang types.Language) string {
	if lang == types.LanguageEnglish {
		return "See more results on the website: " + types.ListingBaseURL
	}
	return "للمزيد من النتائج زر موقعنا: " + types.ListingBaseURL
}

var _ interfaces.ChannelRenderer = (*WhatsAppRenderer)(nil)
