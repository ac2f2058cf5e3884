/*
Copyright © 2025 Jeff Valk
*/
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/jeffvalk/serialio"
	"github.com/jeffvalk/serialio/internal/logging"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve <port>",
	Short: "Bridge a serial port to WebSocket clients",
	Long: `Bridge a serial port to WebSocket clients over HTTP.

Every batch of bytes received on the serial port is broadcast to all
connected WebSocket clients as a binary message. Binary or text messages
sent by any client are written to the port as-is.

This allows remote tools (browsers, scripts, dashboards) to share one
physical port without touching the device node.

Example usage:
  serialio serve /dev/ttyUSB0
  serialio serve /dev/ttyUSB0 --baud 9600 --addr :9000
  serialio serve /dev/ttyACM0 --path /serial`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		baudRate, _ := cmd.Flags().GetInt("baud")
		addr, _ := cmd.Flags().GetString("addr")
		wsPath, _ := cmd.Flags().GetString("path")

		opts := []serialio.Option{
			serialio.WithBaudRate(baudRate),
		}

		if err := runServe(portPath, addr, wsPath, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	serveCmd.Flags().StringP("addr", "a", ":8989", "HTTP listen address")
	serveCmd.Flags().String("path", "/ws", "WebSocket endpoint path")
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsBridge fans incoming port batches out to connected WebSocket clients
// and writes client messages to the port. The mutex guards the client set
// and serializes broadcast writes, since a connection allows only one
// concurrent writer.
type wsBridge struct {
	port    serialio.Port
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newWSBridge() *wsBridge {
	return &wsBridge{clients: make(map[*websocket.Conn]bool)}
}

func (b *wsBridge) broadcast(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			logging.Debugf("serve: dropping client %s: %v", conn.RemoteAddr(), err)
			conn.Close()
			delete(b.clients, conn)
		}
	}
}

func (b *wsBridge) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Errorf("serve: upgrade: %v", err)
		return
	}

	b.mu.Lock()
	b.clients[conn] = true
	active := len(b.clients)
	b.mu.Unlock()
	logging.Infof("serve: client %s connected (%d active)", conn.RemoteAddr(), active)

	defer func() {
		b.mu.Lock()
		delete(b.clients, conn)
		b.mu.Unlock()
		conn.Close()
		logging.Infof("serve: client %s disconnected", conn.RemoteAddr())
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if len(msg) == 0 {
			continue
		}

		if _, err := b.port.Write(msg); err != nil {
			logging.Errorf("serve: write to %s: %v", b.port.Name(), err)
			return
		}
	}
}

func runServe(portPath, addr, wsPath string, opts ...serialio.Option) error {
	bridge := newWSBridge()

	// The handler is installed before any client can connect, so early
	// batches broadcast to an empty set and are dropped.
	port, err := serialio.Open(portPath, append(opts,
		serialio.WithBytesHandler(bridge.broadcast))...)
	if err != nil {
		return fmt.Errorf("failed to open port: %w", err)
	}
	defer port.Close()
	bridge.port = port

	mux := http.NewServeMux()
	mux.HandleFunc(wsPath, bridge.serveWS)

	fmt.Printf("Bridging %s to ws://%s%s\n", portPath, hostAddr(addr), wsPath)
	fmt.Println("Press Ctrl+C to stop")

	return http.ListenAndServe(addr, mux)
}

func hostAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
