package telegram

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/skalibog/bspa/pkg/models"
)

// FormatReport форматирует полный отчет цикла анализа в HTML-сообщение
func FormatReport(report models.Report) string {
	var b strings.Builder

	icon := "🟢"
	if report.Signal.PercentChange < 0 {
		icon = "🔴"
	}

	fmt.Fprintf(&b, "%s <b>%s</b> — %s\n", icon, report.Symbol, report.Signal.Message)
	fmt.Fprintf(&b, "💰 Цена: $%s\n", formatPrice(report.CurrentPrice))
	fmt.Fprintf(&b, "📊 Оборот 24ч: $%s\n\n", formatValue(report.Volume24h))

	b.WriteString("<b>Изменение цены:</b>\n")
	for _, change := range report.Changes {
		fmt.Fprintf(&b, "  %s: %s%%\n", change.Window, formatSigned(change.Percent))
	}

	b.WriteString("\n<b>Объемы (покупки / продажи):</b>\n")
	for _, stats := range report.Windows {
		mark := ""
		if stats.Estimated {
			// Факт был неправдоподобен, показана оценка
			mark = " ≈"
		}
		fmt.Fprintf(&b, "  %s: $%s / $%s%s\n",
			stats.Window, formatValue(stats.BuyValue), formatValue(stats.SellValue), mark)
	}

	b.WriteString("\n")
	b.WriteString(FormatZones(report))

	if report.TrendNote != "" {
		fmt.Fprintf(&b, "\n📈 %s\n", report.TrendNote)
	}

	fmt.Fprintf(&b, "\n⏱ %s", report.Timestamp.UTC().Format("02.01.2006 15:04:05 UTC"))
	return b.String()
}

// FormatZones форматирует блок зон покупок
func FormatZones(report models.Report) string {
	var b strings.Builder

	if report.SyntheticZones {
		b.WriteString("⚠️ Значимые зоны покупок не найдены, показаны ориентировочные уровни\n")
	} else {
		b.WriteString("<b>Зоны покупок:</b>\n")
	}
	for _, zone := range report.Zones {
		fmt.Fprintf(&b, "  🛒 $%s — объем $%s\n", formatPrice(zone.Price), formatValue(zone.Value))
	}
	return b.String()
}

// formatPrice подбирает точность под порядок величины цены
func formatPrice(price float64) string {
	d := decimal.NewFromFloat(price)
	switch {
	case price >= 1000:
		return d.Round(2).String()
	case price >= 1:
		return d.Round(4).String()
	default:
		return d.Round(8).String()
	}
}

// formatValue округляет обороты до целых котируемых единиц
func formatValue(value float64) string {
	return decimal.NewFromFloat(value).Round(0).String()
}

// formatSigned добавляет явный знак к положительным процентам
func formatSigned(percent float64) string {
	s := decimal.NewFromFloat(percent).Round(2).String()
	if percent > 0 {
		return "+" + s
	}
	return s
}
