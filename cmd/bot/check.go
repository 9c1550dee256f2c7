package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"housebot/internal/datestore"
	logx "housebot/pkg/logx"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and lint every date file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := cfg.Resolve()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "greeter   enabled=%t at=%s\n", s.Greeter.Enabled, s.Greeter.At)
		fmt.Fprintf(out, "dinner    enabled=%t open=%s close=%s sunday_close=%s\n",
			s.Dinner.Enabled, s.Dinner.OpenAt, s.Dinner.CloseAt, s.Dinner.SundayCloseAt)

		files := make([]*datestore.File, 0, len(s.Reminders))
		for _, r := range s.Reminders {
			files = append(files, datestore.NewFile(r.File))
		}
		w := datestore.NewWatcher(files, logx.Nop())
		bad, unreadable := 0, 0
		for i, r := range s.Reminders {
			invalid, err := w.Lint(files[i])
			if err != nil {
				unreadable++
				fmt.Fprintf(out, "reminder  %s at=%s file=%s unreadable: %v\n", r.Name, r.At, r.File, err)
				continue
			}
			bad += len(invalid)
			fmt.Fprintf(out, "reminder  %s at=%s file=%s invalid_lines=%d\n", r.Name, r.At, r.File, len(invalid))
			for _, l := range invalid {
				fmt.Fprintf(out, "          line %d: %q\n", l.Line, l.Text)
			}
		}
		switch {
		case unreadable > 0:
			return fmt.Errorf("%d date file(s) cannot be read", unreadable)
		case bad > 0:
			return errors.New("date files contain lines that will be dropped")
		}
		return nil
	},
}
