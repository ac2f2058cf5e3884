/*
Copyright © 2025 Jeff Valk
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeffvalk/serialio"
	"github.com/jeffvalk/serialio/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialio",
	Short: "Serial port toolbox",
	Long: `serialio is a toolbox for working with serial ports.

It can list and inspect ports, send one-shot payloads, run
request/response exchanges, stream incoming data in a TUI,
capture traffic to a file, and bridge a port to WebSocket
clients.

Known ports can be pinned with the --ports flag, the SERIALIO_PORTS
environment variable, or the ports key in ~/.serialio.yaml; when set,
commands only see the pinned ports instead of scanning the system.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialio.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringSlice("ports", nil, "pin the set of known ports (skips system scan)")

	cobra.CheckErr(viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")))
	cobra.CheckErr(viper.BindPFlag("ports", rootCmd.PersistentFlags().Lookup("ports")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".serialio" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".serialio")
	}

	viper.SetEnvPrefix("serialio")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logging.Debugf("using config file: %s", viper.ConfigFileUsed())
	}

	if name := viper.GetString("log_level"); name != "" {
		if level, err := logging.ParseLevel(name); err == nil {
			logging.SetLevel(level)
		} else {
			logging.Warnf("%v", err)
		}
	}
	if viper.GetBool("verbose") {
		logging.SetLevel(logging.DebugLevel)
	}

	if ports := viper.GetStringSlice("ports"); len(ports) > 0 {
		serialio.AddPorts(ports...)
	}
}
