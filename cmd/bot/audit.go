package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"housebot/internal/storage"
	logx "housebot/pkg/logx"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Print the most recent audit entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage == nil {
			return errors.New("storage is not configured")
		}
		st, err := storage.Open(storage.Config{Driver: cfg.Storage.Driver, Path: cfg.Storage.Path}, logx.Nop())
		if err != nil {
			return err
		}
		if st == nil {
			return errors.New("storage is disabled")
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		entries, err := st.RecentAudit(ctx, auditLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "AT\tJOB\tCYCLE\tKIND\tDETAIL\tERROR")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				e.At.Local().Format(time.DateTime), e.Job, e.Cycle, e.Kind, e.Detail, e.Error)
		}
		return w.Flush()
	},
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "number of entries to show (0 for all)")
}
