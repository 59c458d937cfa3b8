package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/SobhanAbedi/swfleet/pkg/ids"
	"github.com/SobhanAbedi/swfleet/pkg/models"
	"github.com/SobhanAbedi/swfleet/pkg/session"
	"github.com/spf13/cobra"
)

func newFilmsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "films",
		Short: "List the films ordered by episode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSession(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, film := range s.GetFilms() {
				fmt.Fprintf(out, "%s - %d starships\n", film, len(film.StarshipIDs))
			}
			return nil
		},
	}
}

func newStarshipsCmd(a *app) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "starships <episode>",
		Short: "Show one page of the starships in a film",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("--page must be >= 1 (got %d)", page)
			}

			s, err := a.loadSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.SelectFilm(args[0]); err != nil {
				return err
			}

			current := s.GetPage()
			for current.PageIndex < page-1 && current.HasNext {
				current = s.Next()
			}
			if current.PageIndex != page-1 {
				return fmt.Errorf("page %d out of range: episode %s has %d pages", page, args[0], current.PageCount)
			}

			film, _ := s.Selected()
			writePage(cmd.OutOrStdout(), film, current)
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number, starting at 1")
	return cmd
}

func writePage(out io.Writer, film models.Film, page session.Page) {
	fmt.Fprintln(out, film)
	fmt.Fprintf(out, "Page %d/%d (%d starships)\n", page.PageIndex+1, max(page.PageCount, 1), page.Total)
	for _, ship := range page.Items {
		fmt.Fprintf(out, "  %-3d %-30s %s\n", ship.ID, ship.Name, ship)
	}
	for _, id := range page.Missing {
		fmt.Fprintf(out, "  %-3d (not loaded)\n", id)
	}
	switch {
	case page.HasPrevious && page.HasNext:
		fmt.Fprintln(out, "< previous | next >")
	case page.HasNext:
		fmt.Fprintln(out, "next >")
	case page.HasPrevious:
		fmt.Fprintln(out, "< previous")
	}
}

func newStarshipCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "starship <id>",
		Short: "Show a starship and the films it appears in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ids.ValidateStarshipID(args[0])
			if err != nil {
				return err
			}

			s, err := a.loadSession(cmd.Context())
			if err != nil {
				return err
			}

			ship, ok := s.GetStarship(id)
			if !ok {
				// Not referenced by any film; fetch it on its own.
				ship, err = s.Orchestrator().FetchStarship(cmd.Context(), id)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (#%d)\n", ship.Name, ship.ID)
			fmt.Fprintln(out, ship)

			films, err := s.StarshipFilms(id)
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				return err
			}
			for _, film := range films {
				fmt.Fprintf(out, "  %s\n", film)
			}
			return nil
		},
	}
}
