package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zachkp/showcase/internal/carousel"
	"github.com/Zachkp/showcase/internal/schedule"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	Deck      string
	DecksFile string
	Items     int
	Active    int
	Ticks     int
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts, Active: -1}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print carousel placements",
		Long: `Print the placement of every item of a carousel.

The carousel is either a deck from the catalogue or an ad-hoc carousel of
--items items with default tuning. --ticks advances a logical clock by that
many auto-advance intervals first; --active then selects an item directly.

Example:
  showcase preview --deck projects
  showcase preview --items 6 --active 0 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Deck, "deck", "projects", "deck to preview")
	cmd.Flags().StringVar(&opts.DecksFile, "decks", "", "deck catalogue file (default: embedded)")
	cmd.Flags().IntVar(&opts.Items, "items", 0, "preview an ad-hoc carousel with this many items")
	cmd.Flags().IntVar(&opts.Active, "active", -1, "select this item before printing")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "auto-advance intervals to run first")

	return cmd
}

type previewResult struct {
	Deck        string               `json:"deck,omitempty"`
	ActiveIndex int                  `json:"activeIndex"`
	AutoAdvance bool                 `json:"autoAdvance"`
	Placements  []carousel.Placement `json:"placements"`
}

func runPreview(w io.Writer, opts *PreviewOptions) error {
	n := opts.Items
	cfg := carousel.DefaultConfig()
	name := ""
	if n == 0 {
		catalogue, err := loadCatalogue(opts.DecksFile)
		if err != nil {
			return err
		}
		d, err := catalogue.Get(opts.Deck)
		if err != nil {
			return err
		}
		n, cfg, name = len(d.Items), d.Carousel, d.Name
	}

	clock := schedule.NewLogical()
	engine, err := carousel.New(n, cfg, clock)
	if err != nil {
		return err
	}
	defer engine.Dispose()

	clock.Advance(engine.Config().Interval * time.Duration(opts.Ticks))
	if opts.Active >= 0 {
		if err := engine.SelectIndex(opts.Active); err != nil {
			return err
		}
	}

	res := previewResult{
		Deck:        name,
		ActiveIndex: engine.ActiveIndex(),
		AutoAdvance: engine.AutoAdvanceEnabled(),
	}
	for i := 0; i < engine.Len(); i++ {
		p, err := engine.Transform(i)
		if err != nil {
			return err
		}
		res.Placements = append(res.Placements, p)
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return writePreviewText(w, res)
}

func writePreviewText(w io.Writer, res previewResult) error {
	if res.Deck != "" {
		fmt.Fprintf(w, "deck: %s\n", res.Deck)
	}
	fmt.Fprintf(w, "active: %d  auto-advance: %t\n\n", res.ActiveIndex, res.AutoAdvance)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tADJ\tX\tZ\tROT\tSCALE\tOPACITY\tSTACK\tVISIBLE")
	for _, p := range res.Placements {
		marker := ""
		if p.IsActive {
			marker = "*"
		}
		fmt.Fprintf(tw, "%d%s\t%+d\t%.1f\t%.1f\t%.1f\t%.2f\t%.2f\t%d\t%t\n",
			p.Index, marker, p.Adjusted, p.LateralOffset, p.DepthOffset, p.Rotation,
			p.Scale, p.Opacity, p.StackOrder, p.Visible)
	}
	return tw.Flush()
}
