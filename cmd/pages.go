package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pdfeditor/internal/audit"
	"github.com/ziadkadry99/pdfeditor/internal/pdfops"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Inspect and edit the pages of a local PDF",
}

var pagesCountCmd = &cobra.Command{
	Use:   "count <file>",
	Short: "Print the number of pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := pdfops.PageCount(args[0])
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

var pagesDeleteCmd = &cobra.Command{
	Use:   "delete <file> <page>",
	Short: "Remove one page (1-based) in place",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid page number %q", args[1])
		}
		if err := pdfops.DeletePage(args[0], page); err != nil {
			return err
		}
		n, err := pdfops.PageCount(args[0])
		if err != nil {
			return err
		}

		if cfg, err := loadConfig(); err == nil {
			if database, err := openDatabase(cfg); err == nil {
				defer database.Close()
				name := filepath.Base(args[0])
				audit.NewStore(database).Record(context.Background(), newLogger(cfg),
					cliEntry(audit.ActionDeletePage, audit.ScopeNew, name, fmt.Sprintf("deleted page %d of %s", page, name)))
			}
		}

		fmt.Printf("Deleted page %d, %d pages remain\n", page, n)
		return nil
	},
}

func init() {
	pagesCmd.AddCommand(pagesCountCmd, pagesDeleteCmd)
	rootCmd.AddCommand(pagesCmd)
}
