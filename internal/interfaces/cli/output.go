package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Continuity/internal/application/lookup"
	"github.com/turtacn/KeyIP-Continuity/internal/domain/patent"
)

// PrintResult writes res in the format chosen by --output.
func PrintResult(cmd *cobra.Command, res *lookup.Result) error {
	format := OutputText
	if cc, err := GetCLIContext(cmd); err == nil {
		format = cc.OutputFormat
	}
	view := res.View()
	out := cmd.OutOrStdout()

	switch format {
	case OutputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case OutputTable:
		printTables(out, view)
	default:
		printText(out, view)
	}
	printAdvisories(cmd.ErrOrStderr(), view)
	return nil
}

// FormatTable renders headers and rows as an aligned text table.
func FormatTable(w io.Writer, headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeaderLine(true)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetTablePadding("  ")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

// ─────────────────────────────────────────────────────────────────────────────
// Sections
// ─────────────────────────────────────────────────────────────────────────────

type section struct {
	title   string
	headers []string
	rows    [][]string
}

func sections(v lookup.ResultView) []section {
	var out []section
	if len(v.Family) > 0 {
		s := section{title: fmt.Sprintf("Family (%d)", len(v.Family)),
			headers: []string{"Application", "Patent", "Filed", "Status", "Title"}}
		for _, m := range v.Family {
			s.rows = append(s.rows, []string{m.ApplicationNumber, m.PatentNumber, m.FilingDate, m.Status, m.Title})
		}
		out = append(out, s)
	}
	if len(v.Proceedings) > 0 {
		s := section{title: fmt.Sprintf("Proceedings (%d)", len(v.Proceedings)),
			headers: []string{"Number", "Status", "Petitioner", "Owner", "Filed", "Patent"}}
		for _, p := range v.Proceedings {
			s.rows = append(s.rows, []string{p.Number, p.Status, p.Petitioner, p.PatentOwner, p.FilingDate, p.PatentNumber})
		}
		out = append(out, s)
	}
	if len(v.Documents) > 0 {
		s := section{title: fmt.Sprintf("Documents (%d)", len(v.Documents)),
			headers: []string{"No.", "Filed", "Type", "Name", "ID"}}
		for _, d := range v.Documents {
			s.rows = append(s.rows, []string{d.Number, d.FilingDate, d.Type, d.Name, d.Identifier})
		}
		out = append(out, s)
	}
	if rows := v.Summaries; len(rows) > 0 {
		out = append(out, summarySection(fmt.Sprintf("Results (%d of %d)", len(rows), v.Total), rows))
	}
	if rows := v.Preview; len(rows) > 0 {
		out = append(out, summarySection(fmt.Sprintf("Preview (%d of %d)", len(rows), v.Total), rows))
	}
	if len(v.Events) > 0 {
		s := section{title: fmt.Sprintf("Events (%d)", len(v.Events)),
			headers: []string{"Date", "Code", "Description"}}
		for _, e := range v.Events {
			s.rows = append(s.rows, []string{e.Date, e.Code, e.Description})
		}
		out = append(out, s)
	}
	return out
}

func summarySection(title string, rows []patent.Summary) section {
	s := section{title: title,
		headers: []string{"Application", "Patent", "Filed", "Status", "Title", "Assignees"}}
	for _, r := range rows {
		s.rows = append(s.rows, []string{r.ApplicationNumber, r.PatentNumber, r.FilingDate, r.Status, r.Title, r.Assignees})
	}
	return s
}

func printTables(w io.Writer, v lookup.ResultView) {
	if p := v.Patent; p != nil {
		FormatTable(w, []string{"Field", "Value"}, recordRows(p))
		fmt.Fprintln(w)
	}
	for _, s := range sections(v) {
		fmt.Fprintln(w, color.New(color.Bold).Sprint(s.title))
		FormatTable(w, s.headers, s.rows)
		fmt.Fprintln(w)
	}
}

func recordRows(p *patent.RecordView) [][]string {
	names := make([]string, 0, len(p.Assignees))
	for _, a := range p.Assignees {
		names = append(names, a.Name)
	}
	return [][]string{
		{"Patent", p.PatentNumber},
		{"Application", p.ApplicationNumber},
		{"Title", p.Title},
		{"Filed", p.FilingDate},
		{"Granted", p.GrantDate},
		{"PTA days", p.PTADays},
		{"Status", p.Status},
		{"Publication", strings.TrimSpace(p.PublicationNumber + " " + p.PublicationDate)},
		{"Inventors", strings.Join(p.Inventors, "; ")},
		{"Assignees", strings.Join(names, "; ")},
		{"Parents", fmt.Sprint(len(p.Parents))},
		{"Children", fmt.Sprint(len(p.Children))},
	}
}

func printText(w io.Writer, v lookup.ResultView) {
	bold := color.New(color.Bold)
	if p := v.Patent; p != nil {
		bold.Fprintf(w, "%s  %s\n", p.PatentNumber, p.Title)
		for _, row := range recordRows(p)[1:] {
			if row[0] == "Title" {
				continue
			}
			fmt.Fprintf(w, "  %-12s %s\n", row[0]+":", row[1])
		}
		fmt.Fprintln(w)
	}
	for _, s := range sections(v) {
		bold.Fprintln(w, s.title)
		for _, row := range s.rows {
			fmt.Fprintf(w, "  %s\n", strings.Join(nonEmpty(row), "  "))
		}
		fmt.Fprintln(w)
	}
}

func printAdvisories(w io.Writer, v lookup.ResultView) {
	if v.NeedsConfirmation {
		fmt.Fprintln(w, color.YellowString("%d results exceed the cap; showing a preview of %d. Re-run with --all to fetch everything.",
			v.Total, len(v.Preview)))
	}
	if v.FamilyTruncated {
		color.New(color.FgYellow).Fprintln(w, "Family traversal stopped at the depth limit; the member list is partial.")
	}
	if v.Error != "" {
		color.New(color.FgRed).Fprintln(w, v.Error)
	}
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

//Personal.AI order the ending
