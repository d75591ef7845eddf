package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// DateBR formats as dd/mm/yyyy.
func DateBR(t time.Time) string {
	return t.Format("02/01/2006")
}

// LongDateBR formats as "17 de Janeiro de 2025".
func LongDateBR(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), MonthName(t.Month()), t.Year())
}

func TimeBR(t time.Time) string {
	return t.Format("15:04")
}

// Amount formats a value with two decimals, comma decimal separator and dot grouping.
func Amount(d decimal.Decimal) string {
	p := message.NewPrinter(language.BrazilianPortuguese)
	return p.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func Currency(d decimal.Decimal) string {
	return "R$ " + Amount(d)
}

// HumanizeDays renders a day offset as "hoje", "em N dia(s)" or "há N dia(s)".
func HumanizeDays(days int) string {
	switch {
	case days == 0:
		return "hoje"
	case days > 0:
		return "em " + plural(days)
	default:
		return "há " + plural(-days)
	}
}

func plural(n int) string {
	if n == 1 {
		return "1 dia"
	}
	return fmt.Sprintf("%d dias", n)
}
