package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the curator version and where it keeps its data",
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		if short {
			fmt.Println(version)
			return nil
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conf := viper.ConfigFileUsed()
		if conf == "" {
			conf = "(none, using defaults)"
		}
		fmt.Printf("curator %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  config:  %s\n", conf)
		fmt.Printf("  data:    %s\n", cfg.Paths.DataDir)
		fmt.Printf("  scoring: %s\n", cfg.Scoring.Mode)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version string")
	rootCmd.AddCommand(versionCmd)
}
