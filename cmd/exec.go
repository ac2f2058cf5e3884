/*
Copyright © 2025 Jeff Valk
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jeffvalk/serialio"
	"github.com/jeffvalk/serialio/internal/tui/colors"
)

// execCmd represents the exec command
var execCmd = &cobra.Command{
	Use:   "exec <data> <port>",
	Short: "Send a request and wait for the response",
	Long: `Send data to a serial port and wait for the device's response.

The response is whatever batch of bytes arrives next on the port, printed
in both hex and ASCII. If nothing arrives within --timeout the command
exits with status 1.

Example usage:
  serialio exec "AT+GMR" /dev/ttyUSB0 --newline
  serialio exec "0206000300000099" /dev/ttyACM0 --hex --timeout 500ms`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		input := args[0]
		portPath := args[1]

		baudRate, _ := cmd.Flags().GetInt("baud")
		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		data := []byte(input)
		if hexMode {
			parsed, err := parseHexString(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex data: %v\n", err)
				os.Exit(1)
			}
			data = parsed
		} else if addNewline {
			data = append(data, '\n')
		}

		reply, err := execData(portPath, data, timeout, serialio.WithBaudRate(baudRate))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if reply == nil {
			fmt.Fprintf(os.Stderr, "No response within %s\n", timeout)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	execCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	execCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal")
	execCmd.Flags().DurationP("timeout", "t", 2*time.Second, "How long to wait for the response")
}

func execData(portPath string, data []byte, timeout time.Duration, opts ...serialio.Option) ([]byte, error) {
	infoStyle := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(colors.Green).
		Bold(true)

	var reply []byte
	err := serialio.Use(portPath, func(port serialio.Port) error {
		fmt.Printf("%s Sending %d bytes, waiting up to %s...\n", infoStyle.Render("📤"), len(data), timeout)

		var err error
		reply, err = port.Exec(data, timeout)
		if err != nil {
			return fmt.Errorf("exchange failed: %w", err)
		}
		if reply == nil {
			return nil
		}

		fmt.Printf("%s Received %d bytes\n", successStyle.Render("✓"), len(reply))
		fmt.Printf("  HEX:   % X\n", reply)
		fmt.Printf("  ASCII: %s\n", printableString(reply))
		return nil
	}, opts...)
	return reply, err
}

func printableString(data []byte) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, string(data))
}
