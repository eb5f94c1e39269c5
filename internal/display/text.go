// Package display renders the grouped board as a plain text countdown.
package display

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"nyctransit.dev/board/internal/grouping"
)

// NoArrivals is written when nothing is left to show.
const NoArrivals = "No upcoming arrivals"

// TitleCase turns Bus Time's upper case destinations into "South Ferry".
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// Render writes the board. Stations and stops come out in board order,
// separated by a blank line.
func Render(w io.Writer, board grouping.Board) error {
	bw := bufio.NewWriter(w)

	if len(board.Stations) == 0 && len(board.Stops) == 0 {
		fmt.Fprintln(bw, NoArrivals)
		return bw.Flush()
	}

	first := true
	separate := func() {
		if !first {
			fmt.Fprintln(bw)
		}
		first = false
	}

	for _, station := range board.Stations {
		separate()
		fmt.Fprintln(bw, header(station.Name, station.Lines))
		writeTrains(bw, "Uptown", station.UpTown)
		writeTrains(bw, "Downtown", station.DownTown)
	}

	for _, stop := range board.Stops {
		separate()
		fmt.Fprintln(bw, header(stop.Name, stop.Lines))
		for _, group := range stop.Groups {
			times := make([]string, len(group.Times))
			for i, t := range group.Times {
				times[i] = strconv.Itoa(t.Minutes) + "min"
				if !t.IsPredicted {
					times[i] += "*"
				}
			}
			fmt.Fprintf(bw, "(%s) %s   %s\n", group.Line, TitleCase(group.Destination), strings.Join(times, ", "))
		}
	}

	return bw.Flush()
}

func header(name string, lines []string) string {
	var sb strings.Builder
	sb.WriteString(name)
	if len(lines) > 0 {
		sb.WriteString(" ")
		for _, line := range lines {
			sb.WriteString("(" + line + ")")
		}
	}
	return sb.String()
}

func writeTrains(w io.Writer, title string, groups []grouping.TrainGroup) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	for _, group := range groups {
		route := "(" + group.Route + ")"
		if group.Express {
			route = "<" + group.Route + ">"
		}
		times := make([]string, len(group.Minutes))
		for i, m := range group.Minutes {
			times[i] = strconv.Itoa(m) + "min"
		}
		fmt.Fprintf(w, "%s %s   %s\n", route, group.Destination, strings.Join(times, ", "))
	}
}
