package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cardgate/registry"
)

var myBuild string

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cardgate",
	Short: "Contactless card access registry",
	Long: `cardgate keeps a persistent list of authorized cards and energizes an
indicator and tone while a registered card is held at the reader.`,
	SilenceUsage: true,
	RunE:         runDaemon,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the reader and serve console commands (default)",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print registered cards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(reg *registry.Registry) error {
			layout := reg.Layout()
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d cards\n", reg.Count(), layout.Capacity)
			for i, e := range reg.All() {
				if layout.Labels {
					fmt.Fprintf(cmd.OutOrStdout(), "%2d  %-29s  %s\n", i+1, registry.FormatUID(e.UID), reg.Label(i))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i+1, registry.FormatUID(e.UID))
				}
			}
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <hex-uid> [label]",
	Short: "Register a card",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := registry.ParseUID(args[0])
		if err != nil {
			return err
		}
		var label string
		if len(args) > 1 {
			label = args[1]
		}
		return withRegistry(func(reg *registry.Registry) error {
			return reg.Insert(uid, label)
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <hex-uid>",
	Short: "Unregister a card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := registry.ParseUID(args[0])
		if err != nil {
			return err
		}
		return withRegistry(func(reg *registry.Registry) error {
			return reg.Delete(uid)
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Unregister every card",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(reg *registry.Registry) error {
			return reg.Clear()
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "cfg", "cardgate.yaml", "Config file")
	rootCmd.AddCommand(runCmd, listCmd, addCmd, removeCmd, clearCmd)
}

func main() {
	fmt.Printf("cardgate build %s\n", myBuild)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withRegistry opens the configured store for an offline maintenance
// command. The daemon must not be running against the same store.
func withRegistry(fn func(*registry.Registry) error) error {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg, false); err != nil {
		return err
	}

	reg, closeStore, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(reg)
}
