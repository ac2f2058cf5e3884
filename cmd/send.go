/*
Copyright © 2025 Jeff Valk
*/
package cmd

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jeffvalk/serialio"
	"github.com/jeffvalk/serialio/internal/tui/colors"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port, fire-and-forget.

This command sends data to the specified serial port. Data can be provided as:
- Command line argument: send "Hello World" /dev/ttyUSB0
- From stdin (pipe): echo "test data" | serialio send /dev/ttyUSB0
- Interactive mode: serialio send /dev/ttyUSB0 (prompts for input)

Use 'exec' instead when you expect a response.

Example usage:
  serialio send "Hello World" /dev/ttyUSB0
  serialio send "AT+GMR" /dev/ttyUSB0 --newline
  serialio send "02 06 00 99" /dev/ttyUSB0 --hex
  echo "test" | serialio send /dev/ttyUSB0`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input, portPath := resolveDataArg(args)

		baudRate, _ := cmd.Flags().GetInt("baud")
		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		opts := []serialio.Option{
			serialio.WithBaudRate(baudRate),
			serialio.WithOpenTimeout(timeout),
		}

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

		if err := sendData(portPath, data, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().DurationP("timeout", "t", 2*time.Second, "Timeout for opening the port")
}

// resolveDataArg splits the arguments into payload and port path. A single
// argument is the port; the payload then comes from a pipe or an
// interactive prompt.
func resolveDataArg(args []string) (data, portPath string) {
	if len(args) >= 2 {
		return args[0], args[1]
	}

	portPath = args[0]
	stat, err := os.Stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		// No pipe input, use interactive mode
		return promptForData(), portPath
	}

	stdinData, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
		os.Exit(1)
	}
	return strings.TrimRight(string(stdinData), "\r\n"), portPath
}

func promptForData() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Mauve)

	fmt.Print(promptStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

// parseHexString decodes a hex payload, tolerating spaces and 0x prefixes:
// "48656C6C6F", "48 65 6C 6C 6F", and "0x48 0x65" all parse.
func parseHexString(hexStr string) ([]byte, error) {
	hexStr = strings.ReplaceAll(hexStr, " ", "")
	hexStr = strings.ReplaceAll(hexStr, "0x", "")
	hexStr = strings.ReplaceAll(hexStr, "0X", "")

	if len(hexStr)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even length")
	}

	data, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}
	return data, nil
}

func sendData(portPath string, data []byte, opts ...serialio.Option) error {
	infoStyle := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(colors.Green).
		Bold(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(colors.Red).
		Bold(true)

	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portPath)

	return serialio.Use(portPath, func(port serialio.Port) error {
		fmt.Printf("%s Connected successfully\n", successStyle.Render("✓"))

		fmt.Printf("%s Sending %d bytes...\n", infoStyle.Render("📤"), len(data))

		sent, err := port.Write(data)
		if err != nil {
			return fmt.Errorf("%s failed to send data: %v", errorStyle.Render("✗"), err)
		}

		fmt.Printf("%s Successfully sent %d bytes\n", successStyle.Render("✓"), len(sent))

		// Show data preview (first 50 chars)
		preview := printableString(sent)
		if len(preview) > 50 {
			preview = preview[:50] + "..."
		}

		fmt.Printf("%s Data: %s\n", infoStyle.Render("📋"), preview)

		return nil
	}, opts...)
}
