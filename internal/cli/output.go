package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/matcher"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/storage"
)

const dateLayout = "2006-01-02"

// lineStyle picks the style for one rendered table line; index 0 is the header.
type lineStyle func(index int) *lipgloss.Style

// renderTable aligns tab-separated lines and styles each one afterwards so
// escape codes never skew the column widths.
func renderTable(w io.Writer, lines []string, style lineStyle) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, line := range lines {
		fmt.Fprintln(tw, line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range out {
		if i == 0 {
			line = HeaderStyle.Render(line)
		} else if s := style(i); s != nil {
			line = s.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintRows renders the review table of a match run. Rows flagged with a
// warning are highlighted, unmatched rows are dimmed.
func PrintRows(w io.Writer, rows []matcher.MatchedRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No pending ride, delivery or bike-share transactions."))
		return err
	}

	lines := []string{"ID\tDATE\tAMOUNT\tACCOUNT\tMATCH\tNOTE"}
	for _, row := range rows {
		tx := row.Transaction
		lines = append(lines, strings.Join([]string{
			tx.ID,
			tx.Date.Format(dateLayout),
			tx.Amount.StringFixed(2),
			tx.AccountName,
			matchLabel(row),
			row.SuggestedNote,
		}, "\t"))
	}

	return renderTable(w, lines, func(i int) *lipgloss.Style {
		row := rows[i-1]
		switch {
		case row.Warn:
			return &WarnStyle
		case !row.Matched():
			return &SubtleStyle
		}
		return nil
	})
}

func matchLabel(row matcher.MatchedRow) string {
	switch {
	case row.Ride != nil:
		return candidateLabel("ride", row.Ride)
	case row.Delivery != nil:
		return candidateLabel("delivery", row.Delivery)
	case len(row.BikeShare) == 1:
		return "bike " + row.BikeShare[0].Cost
	case len(row.BikeShare) > 1:
		return fmt.Sprintf("%d bike rides", len(row.BikeShare))
	}
	return "-"
}

func candidateLabel(kind string, c *matcher.Candidate) string {
	cost := c.DisplayCost
	if cost == "" {
		cost = c.Amount.Neg().StringFixed(2)
	}
	label := kind + " " + cost
	if c.IsTip {
		label += " (tip)"
	}
	if c.Kind == matcher.KindForeign {
		label += " (foreign)"
	}
	return label
}

// PrintMatchSummary prints the counts of a finished run.
func PrintMatchSummary(w io.Writer, result *service.MatchResult) error {
	body := fmt.Sprintf("Run %s\nRows: %d  Matched: %d  Soft: %d  Skipped: %d\nFetched: %d rides, %d deliveries, %d bike rides",
		result.RunID, len(result.Rows), result.Matched, result.SoftMatched, result.Skipped,
		result.RidesFetched, result.Deliveries, result.BikeShares)
	_, err := fmt.Fprintln(w, SummaryStyle.Render(body))
	return err
}

// PrintTags lists cached tags with their checked state.
func PrintTags(w io.Writer, tags []activity.Tag) error {
	if len(tags) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No tags cached. Run `tags sync` first."))
		return err
	}
	lines := []string{"ID\tNAME\tOFFERED"}
	for _, t := range tags {
		offered := "no"
		if t.Checked {
			offered = "yes"
		}
		lines = append(lines, t.ID+"\t"+t.Name+"\t"+offered)
	}
	return renderTable(w, lines, func(i int) *lipgloss.Style {
		if !tags[i-1].Checked {
			return &SubtleStyle
		}
		return nil
	})
}

// PrintLocations lists the alias table sorted by place.
func PrintLocations(w io.Writer, aliases map[string]string) error {
	if len(aliases) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No location aliases."))
		return err
	}
	places := make([]string, 0, len(aliases))
	for place := range aliases {
		places = append(places, place)
	}
	sort.Strings(places)

	lines := []string{"ALIAS\tPLACE"}
	for _, place := range places {
		lines = append(lines, aliases[place]+"\t"+place)
	}
	return renderTable(w, lines, func(int) *lipgloss.Style { return nil })
}

// PrintRuns lists past match runs.
func PrintRuns(w io.Writer, runs []storage.MatchRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No match runs yet."))
		return err
	}
	lines := []string{"ID\tSTARTED\tSTATUS\tROWS\tMATCHED\tERROR"}
	for _, run := range runs {
		lines = append(lines, strings.Join([]string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Status,
			fmt.Sprint(run.Transactions),
			fmt.Sprint(run.Matched),
			run.ErrorMessage,
		}, "\t"))
	}
	return renderTable(w, lines, func(i int) *lipgloss.Style {
		if runs[i-1].Status == storage.RunStatusFailed {
			return &ErrorStyle
		}
		return nil
	})
}

// PrintCredentials reports which services have captured sessions.
func PrintCredentials(w io.Writer, statuses []credentials.Status) error {
	lines := []string{"SERVICE\tLOGGED IN"}
	for _, s := range statuses {
		state := "yes"
		if !s.LoggedIn {
			state = "no"
		}
		lines = append(lines, s.Service.DisplayName()+"\t"+state)
	}
	return renderTable(w, lines, func(i int) *lipgloss.Style {
		if !statuses[i-1].LoggedIn {
			return &ErrorStyle
		}
		return nil
	})
}
