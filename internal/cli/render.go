package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/renovation-quote/internal/config"
	"github.com/Veraticus/renovation-quote/internal/labor"
	"github.com/Veraticus/renovation-quote/internal/materials"
	"github.com/Veraticus/renovation-quote/internal/model"
	"github.com/Veraticus/renovation-quote/internal/vat"
)

// FormatEuro renders an amount with two decimals, thousands separators and
// a euro sign.
func FormatEuro(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac + " €"
}

// RenderOptions selects the optional parts of a rendered quote.
type RenderOptions struct {
	VAT         *vat.Breakdown
	Suggestions bool
}

// RenderQuote renders a quote for the terminal.
func RenderQuote(q *model.Quote, opts RenderOptions) string {
	var sections []string

	req := q.Requirement
	tasks := make([]string, len(req.Tasks))
	for i, t := range req.Tasks {
		tasks[i] = string(t)
	}
	header := strings.Join([]string{
		fmt.Sprintf("%s %s", BoldStyle.Render("Location:"), req.Location),
		fmt.Sprintf("%s %.1f m²", BoldStyle.Render("Size:"), req.Size),
		fmt.Sprintf("%s %s", BoldStyle.Render("Quality:"), req.Quality),
		fmt.Sprintf("%s %s", BoldStyle.Render("Tasks:"), strings.Join(tasks, ", ")),
		SubtleStyle.Render(q.GeneratedAt.Format("2006-01-02 15:04")),
	}, "\n")
	sections = append(sections, FormatTitle("Quote "+q.ID), header)

	rows := make([][]string, 0, len(q.TaskPrices))
	for _, line := range q.TaskPrices {
		note := ""
		if line.Fallback() {
			note = WarningStyle.Render("fallback")
		}
		rows = append(rows, []string{
			string(line.Task),
			FormatEuro(line.Materials),
			FormatEuro(line.Labor),
			FormatEuro(line.Total),
			note,
		})
	}
	sections = append(sections, renderTable([]string{"Task", "Materials", "Labor", "Total", ""}, rows))

	totals := [][]string{
		{"Materials", FormatEuro(q.MaterialsTotal)},
		{"Labor", FormatEuro(q.LaborTotal)},
		{"Subtotal", FormatEuro(q.Subtotal)},
		{"VAT", FormatEuro(q.VATAmount)},
		{fmt.Sprintf("Margin %.0f%%", q.MarginPercentage), ""},
		{BoldStyle.Render("Final price"), BoldStyle.Render(FormatEuro(q.FinalPrice))},
	}
	sections = append(sections, renderTable(nil, totals))

	sections = append(sections, fmt.Sprintf("%s %.1f/100 (%s)   %s %.1f h, %.1f days",
		BoldStyle.Render("Confidence:"), q.ConfidenceScore, severityStyle(q.Confidence.Severity).Render(q.Confidence.Severity),
		BoldStyle.Render("Duration:"), q.EstimatedDurationHours, q.Schedule.TotalDays))

	if len(q.Confidence.Flags) > 0 {
		sections = append(sections, SubtleStyle.Render("Flags: "+strings.Join(q.Confidence.Flags, ", ")))
	}

	if opts.Suggestions && len(q.Confidence.Suggestions) > 0 {
		lines := make([]string, len(q.Confidence.Suggestions))
		for i, s := range q.Confidence.Suggestions {
			lines[i] = FormatInfo(s)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if opts.VAT != nil {
		sections = append(sections, RenderVAT(*opts.VAT))
	}

	return strings.Join(sections, "\n\n") + "\n"
}

// RenderVAT renders a VAT breakdown.
func RenderVAT(b vat.Breakdown) string {
	rows := make([][]string, 0, len(b.ByTask))
	for _, line := range b.ByTask {
		rows = append(rows, []string{
			string(line.Task),
			fmt.Sprintf("%s %s", FormatEuro(line.Materials.Amount), SubtleStyle.Render(string(line.Materials.Applied))),
			fmt.Sprintf("%s %s", FormatEuro(line.Labor.Amount), SubtleStyle.Render(string(line.Labor.Applied))),
			FormatEuro(line.Total),
		})
	}

	var byClass []string
	for _, class := range []model.VATClass{model.VATStandard, model.VATReduced, model.VATSuperReduced} {
		byClass = append(byClass, fmt.Sprintf("%s %s", class, FormatEuro(b.ByClass[class])))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(chartIcon+" VAT breakdown"),
		renderTable([]string{"Task", "Materials VAT", "Labor VAT", "Total"}, rows),
		"",
		SubtleStyle.Render(strings.Join(byClass, "  ·  ")),
		BoldStyle.Render("Total VAT "+FormatEuro(b.Total)),
	)
}

// RatesView is everything the rates command shows.
type RatesView struct {
	VAT       vat.Config
	Materials []materials.SummaryLine
	Labor     []labor.RateLine
	Rules     config.Rules
}

// RenderRates renders the pricing tables in force.
func RenderRates(v RatesView) string {
	matRows := make([][]string, 0, len(v.Materials))
	for _, m := range v.Materials {
		matRows = append(matRows, []string{
			string(m.Task), FormatEuro(m.BaseCost) + " / " + m.Unit, fmt.Sprintf("%.2f", m.SizeFactor),
		})
	}

	labRows := make([][]string, 0, len(v.Labor))
	for _, l := range v.Labor {
		labRows = append(labRows, []string{
			string(l.Task), FormatEuro(l.Hourly), FormatEuro(l.Daily), fmt.Sprintf("%.2f", l.ComplexityFactor),
		})
	}

	vatRows := make([][]string, 0, len(v.VAT.Classifications))
	for _, task := range model.AllTasks() {
		class := v.VAT.Classifications[task]
		vatRows = append(vatRows, []string{string(task), string(class), fmt.Sprintf("%.1f%%", v.VAT.Rates[class]*100)})
	}

	locRows := make([][]string, 0, len(v.Rules.Locations))
	for _, name := range slices.Sorted(maps.Keys(v.Rules.Locations)) {
		locRows = append(locRows, []string{name, fmt.Sprintf("×%.2f", v.Rules.Locations[name])})
	}

	return strings.Join([]string{
		FormatTitle("Pricing tables"),
		RenderBox("Materials", renderTable([]string{"Task", "Base cost", "Size factor"}, matRows)),
		RenderBox("Labor", renderTable([]string{"Task", "Hourly", "Daily", "Complexity"}, labRows)),
		RenderBox("VAT", renderTable([]string{"Task", "Class", "Rate"}, vatRows)),
		RenderBox("Locations", renderTable([]string{"Location", "Multiplier"}, locRows)),
		SubtleStyle.Render(fmt.Sprintf("Margins: standard %.0f%%, budget %.0f%%",
			v.Rules.Margins.Standard*100, v.Rules.Margins.Budget*100)),
	}, "\n") + "\n"
}

func renderTable(headers []string, rows [][]string) string {
	cols := len(headers)
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = TableCellStyle.Width(widths[i] + 2).Render(c)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}

	var lines []string
	if len(headers) > 0 {
		lines = append(lines, renderRow(headers, TableHeaderStyle))
	}
	for _, r := range rows {
		lines = append(lines, renderRow(r, lipgloss.NewStyle()))
	}
	return strings.Join(lines, "\n")
}

func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case "high":
		return ErrorStyle
	case "medium":
		return WarningStyle
	case "low":
		return InfoStyle
	}
	return SuccessStyle
}
