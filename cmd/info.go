/*
Copyright © 2025 Jeff Valk
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeffvalk/serialio"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  serialio info /dev/ttyUSB0
  serialio info /dev/ttyACM0

For USB devices, this displays vendor/product IDs, serial numbers, and
other USB-specific metadata reported by the platform.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		info, err := serialio.PortDetails(portPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting port info: %v\n", err)
			if errors.Is(err, serialio.ErrUnknownPort) {
				fmt.Fprintln(os.Stderr, "Hint: run 'serialio list' to see enumerable ports. Pinned virtual ports have no platform metadata.")
			}
			os.Exit(1)
		}

		fmt.Printf("Port Information: %s\n\n", info.Name)
		fmt.Printf("  Description: %s\n", info.Description)

		if info.IsUSB {
			fmt.Println("\nUSB Device Information:")
			if info.VID != "" {
				fmt.Printf("  Vendor ID:  %s\n", info.VID)
			}
			if info.PID != "" {
				fmt.Printf("  Product ID: %s\n", info.PID)
			}
			if info.SerialNumber != "" {
				fmt.Printf("  Serial:     %s\n", info.SerialNumber)
			}
			if info.Product != "" {
				fmt.Printf("  Product:    %s\n", info.Product)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
