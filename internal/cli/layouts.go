package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/statblock"
)

func (c *CLI) layoutsCommand() *cobra.Command {
	var layoutDir string

	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "List and inspect statblock layouts",
	}
	cmd.PersistentFlags().StringVar(&layoutDir, "dir", "", "directory of additional layout files")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := c.loadLayouts(layoutDir)
			if err != nil {
				return err
			}
			printLayoutTable(registry)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a layout's item tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := c.loadLayouts(layoutDir)
			if err != nil {
				return err
			}
			layout, ok := registry.Get(args[0])
			if !ok {
				return errors.New(errors.ErrCodeLayoutNotFound, "layout %q", args[0])
			}
			printLayout(layout)
			return nil
		},
	}

	pick := &cobra.Command{
		Use:   "pick",
		Short: "Pick a layout interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := c.loadLayouts(layoutDir)
			if err != nil {
				return err
			}
			name, err := pickLayout(registry)
			if err != nil {
				return err
			}
			if name == "" {
				printInfo("no layout selected")
				return nil
			}
			layout, _ := registry.Get(name)
			printLayout(layout)
			return nil
		},
	}

	cmd.AddCommand(list, show, pick)
	return cmd
}

func printLayoutTable(registry *statblock.Registry) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("NAME", "SLUG", "ITEMS", "WIDTH")
	for _, name := range registry.Names() {
		layout, _ := registry.Get(name)
		width := layout.ColumnWidth
		if width == "" {
			width = "-"
		}
		t.Row(name, layout.Slug(), fmt.Sprintf("%d", countItems(layout.Blocks)), width)
	}
	fmt.Println(t.Render())
}

func printLayout(layout *statblock.Layout) {
	fmt.Println(StyleTitle.Render(layout.Name))
	if layout.ColumnWidth != "" {
		printDetail("column width: %s", layout.ColumnWidth)
	}
	for _, item := range layout.Blocks {
		printItem(item, 0)
	}
}

func printItem(item statblock.Item, depth int) {
	indent := strings.Repeat("  ", depth)
	label := string(item.Type)
	if item.Heading != "" {
		label += " " + StyleHighlight.Render(item.Heading)
	}
	if len(item.Properties) > 0 {
		label += " " + StyleDim.Render("["+strings.Join(item.Properties, ", ")+"]")
	}
	if item.Layout != "" {
		label += " " + StyleDim.Render("-> "+item.Layout)
	}
	fmt.Println(indent + StyleValue.Render("•") + " " + label)
	for _, child := range item.Nested {
		printItem(child, depth+1)
	}
	for _, branch := range item.Branches {
		cond := branch.Condition
		if cond == "" {
			cond = "default"
		}
		fmt.Println(indent + "  " + StyleDim.Render("when "+cond))
		for _, child := range branch.Nested {
			printItem(child, depth+2)
		}
	}
}

func countItems(items []statblock.Item) int {
	n := 0
	for _, item := range items {
		n++
		n += countItems(item.Nested)
		for _, branch := range item.Branches {
			n += countItems(branch.Nested)
		}
	}
	return n
}
