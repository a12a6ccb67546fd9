package cmd

import (
	"bufio"
	"fmt"

	"github.com/conneroisu/practicals/internal/content"
	"github.com/conneroisu/practicals/internal/demos"
	"github.com/conneroisu/practicals/internal/logging"
	"github.com/conneroisu/practicals/internal/shell"
	"github.com/spf13/cobra"
)

var renderTitle string

var renderCmd = &cobra.Command{
	Use:     "render [file]",
	Aliases: []string{"r"},
	Short:   "Render one page to stdout",
	Long: `Render one page, shell included, to stdout. Without an argument the index
page is rendered.

Output is streamed: if the page directory cannot be listed, the output stops
after the inline error that replaces the menu and the command fails.

Examples:
  practicals render                          # The index page
  practicals render practical_exe_02.html    # One exercise
  practicals render practical_exe_05.html --title "Overloading" > out.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderTitle, "title", "t", "", "page title (default: layout.default_title)")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name := cfg.Pages.IndexFile()
	if len(args) == 1 {
		name = args[0]
	}

	ctx := cmd.Context()
	logger := newLogger(cfg, cmd.ErrOrStderr())
	pages, reg := openPages(cfg)

	entry, err := reg.Resolve(ctx, name)
	if err != nil {
		return fmt.Errorf("cannot render %s: %w", name, err)
	}

	ctx = shell.WithCurrentPage(ctx, entry.FileName)
	ctx = demos.WithEnv(ctx, demos.Env{
		Pages:  pages,
		Index:  cfg.Pages.IndexFile(),
		Mailer: demos.NewLogMailer(logger),
		From:   cfg.Mail.From,
	})

	op := logging.StartOperation(logger, "render")
	out := bufio.NewWriter(cmd.OutOrStdout())
	s := shell.New(pages, reg, shell.ConfigFrom(cfg), logger)
	renderErr := s.Render(ctx, out, renderTitle, content.NewRenderer(pages).Page(entry))

	// What was rendered before a failure is still part of the output.
	if err := out.Flush(); err != nil {
		return err
	}
	if renderErr != nil {
		op.EndWithError(ctx, renderErr, "page", entry.FileName)
		return renderErr
	}
	op.End(ctx, "page", entry.FileName)
	return nil
}
