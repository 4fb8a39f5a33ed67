package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/starford/journal/internal/index"
	"github.com/starford/journal/internal/journal"
)

func printPage(path string, created bool) {
	state := color.New(color.Faint).Sprint("opened")
	if created {
		state = color.GreenString("created")
	}
	fmt.Fprintf(color.Output, "%s %s\n", state, path)
}

func printPageTable(items []journal.PageListItem) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("DATE"), bold.Sprint("TITLE"), bold.Sprint("NOTES"), bold.Sprint("PATH"))
	for _, it := range items {
		tbl.AddRow(it.Date, it.Title, strconv.Itoa(len(it.Notes)), it.Path)
	}
	fmt.Fprintln(color.Output, tbl)
}

func printSearchTable(results []index.SearchResult) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 80
	tbl.AddRow(bold.Sprint("DAY"), bold.Sprint("SNIPPET"))
	for _, r := range results {
		tbl.AddRow(color.CyanString(r.Day), r.Snippet)
	}
	fmt.Fprintln(color.Output, tbl)
}
