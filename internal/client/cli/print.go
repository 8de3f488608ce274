package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/fatih/color"
)

// printEntries writes the search results, or the entries of the selected day
// (today by default).
func (a *App) printEntries(ctx context.Context) error {
	var (
		es  []models.Entry
		err error
	)
	if a.config.Search != "" {
		es, err = a.entryService.Search(ctx, a.config.Search)
	} else {
		date := a.config.Date
		if date == "" {
			date = a.entryService.Today()
		}
		es, err = a.entryService.ByDate(ctx, date)
	}
	if err != nil {
		return err
	}

	dateColor := color.New(color.FgCyan)
	if a.colorize {
		dateColor.EnableColor()
	} else {
		dateColor.DisableColor()
	}

	for _, e := range es {
		if _, err := fmt.Fprintf(a.out, "%s - %s\n", dateColor.Sprint(e.Created), e.Message); err != nil {
			return err
		}
	}
	return nil
}
