package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mind-engage/gearscore/internal/affixdb"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List the classes in the affix database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := affixdb.Open(viper.GetString("db"))
		if err != nil {
			return err
		}
		db := store.Snapshot()
		out := cmd.OutOrStdout()
		if len(db) == 0 {
			fmt.Fprintln(out, warnStyle.Render("⚠️ "+store.Path()+" has no classes; run gearctl update"))
			return nil
		}
		for _, k := range db.Classes() {
			e := db[k]
			fmt.Fprintf(out, "%s %s %s\n", e.Icon, headerStyle.Render(k),
				mutedStyle.Render(fmt.Sprintf("%s  base=%d temper=%d aspects=%d", e.Label, len(e.Base), len(e.Temper), len(e.Aspects))))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classesCmd)
}
