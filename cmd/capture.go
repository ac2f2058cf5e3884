/*
Copyright © 2025 Jeff Valk
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeffvalk/serialio"
	"github.com/jeffvalk/serialio/internal/logging"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port> <output-file>",
	Short: "Capture serial data to a file",
	Long: `Capture incoming serial data to a file for later parsing.

Appends every byte received on the specified serial port to the output
file. Runs continuously until interrupted (Ctrl+C).

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data.

Example usage:
  serialio capture /dev/ttyUSB0 data.log
  serialio capture /dev/ttyUSB0 output.txt --baud 9600
  serialio capture /dev/ttyUSB0 capture.log --console`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]
		outputPath := args[1]

		baudRate, _ := cmd.Flags().GetInt("baud")
		showConsole, _ := cmd.Flags().GetBool("console")

		opts := []serialio.Option{
			serialio.WithBaudRate(baudRate),
		}

		if err := runCapture(portPath, outputPath, showConsole, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
}

func runCapture(portPath, outputPath string, showConsole bool, opts ...serialio.Option) error {
	// Open output file in append mode
	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	// Incoming batches land on a buffered channel so the handler never
	// blocks on disk I/O.
	batches := make(chan []byte, 64)
	port, err := serialio.Open(portPath, append(opts,
		serialio.WithBytesHandler(func(data []byte) {
			select {
			case batches <- data:
			default:
				logging.Warnf("capture %s: backlog full, dropping %d bytes", portPath, len(data))
			}
		}))...)
	if err != nil {
		return fmt.Errorf("failed to open port: %w", err)
	}
	defer port.Close()

	// Setup signal handling for clean shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	fmt.Fprintf(os.Stderr, "Capturing data from %s to %s\n", portPath, outputPath)
	if showConsole {
		fmt.Fprintf(os.Stderr, "Console display enabled\n")
	}
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	status := time.NewTicker(10 * time.Second)
	defer status.Stop()

	bytesWritten := int64(0)
	startTime := time.Now()

	for {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, shutting down...\n")

			// Flush whatever already arrived.
			for {
				select {
				case data := <-batches:
					if n, err := file.Write(data); err == nil {
						bytesWritten += int64(n)
					}
				default:
					duration := time.Since(startTime)
					fmt.Fprintf(os.Stderr, "Capture complete: %d bytes written in %v\n",
						bytesWritten, duration.Round(time.Millisecond))
					return nil
				}
			}

		case <-status.C:
			fmt.Fprintf(os.Stderr, "... %d bytes in %v\n",
				bytesWritten, time.Since(startTime).Round(time.Second))

		case data := <-batches:
			written, err := file.Write(data)
			if err != nil {
				return fmt.Errorf("write error: %w", err)
			}
			bytesWritten += int64(written)

			if showConsole {
				os.Stdout.Write(data)
			}
		}
	}
}
