package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pdfeditor/internal/client"
)

var (
	remoteURL     string
	remoteSession string
	remoteFolder  string
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Edit files held by a running pdfeditor server",
	Long: `Calls a running server's editing endpoints. Authenticate by passing the
value of the pdfeditor_session cookie with --session.`,
}

var remoteDeleteCmd = &cobra.Command{
	Use:   "delete-page <filename> <page>",
	Short: "Delete a page from a file on the server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid page number %q", args[1])
		}
		if err := remoteClient().DeletePage(context.Background(), args[0], remoteFolder, page); err != nil {
			return err
		}
		fmt.Printf("Deleted page %d of %s\n", page, args[0])
		return nil
	},
}

var remoteSaveCmd = &cobra.Command{
	Use:   "save <filename>",
	Short: "Save a file on the server to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := remoteClient().Save(context.Background(), args[0], remoteFolder); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", args[0])
		return nil
	},
}

func remoteClient() *client.Client {
	return client.New(remoteURL, client.WithSession(remoteSession))
}

func init() {
	remoteCmd.PersistentFlags().StringVar(&remoteURL, "url", "http://localhost:8080", "server base URL")
	remoteCmd.PersistentFlags().StringVar(&remoteSession, "session", "", "session cookie value")
	remoteCmd.PersistentFlags().StringVar(&remoteFolder, "folder", "processed", "folder type: processed or uploads")
	remoteCmd.AddCommand(remoteDeleteCmd, remoteSaveCmd)
	rootCmd.AddCommand(remoteCmd)
}
