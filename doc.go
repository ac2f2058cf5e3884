// Package serialio provides serial port communication with two consumption
// modes over a single data stream: an event-driven handler for continuous
// traffic and blocking reads for request/response exchanges. Both modes
// share one underlying stream, so a blocking read temporarily borrows the
// handler slot and hands it back when it finishes.
//
// # Basic Usage
//
// Open a port with default configuration (115200 8N1) and exchange data:
//
//	port, err := serialio.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	// Fire-and-forget write; the payload may be []byte, string,
//	// []int, int or byte and is coerced to raw bytes.
//	sent, err := port.Write("AT\r\n")
//
//	// Request/response: write, then wait up to one second for the
//	// reply. A quiet line yields (nil, nil), not an error.
//	reply, err := port.Exec("AT+GMR\r\n", time.Second)
//
// # Event-Driven Handling
//
// Install a handler to consume traffic as it arrives. The handler can be
// replaced at any time; replacement is atomic and affects the very next
// delivery:
//
//	port.OnData(func(ev serialio.Event) {
//	    fmt.Printf("[%s] % X\n", ev.Time.Format("15:04:05"), ev.Data)
//	})
//
//	// Or, when only the bytes matter:
//	port.OnBytes(func(data []byte) {
//	    parser.Feed(data)
//	})
//
// Each delivery carries every byte available at that instant. Batch
// boundaries are an artifact of timing, never message framing; callers
// needing framing must reassemble on top.
//
// # Blocking Reads
//
// Read blocks for the next batch, restoring the previously installed
// handler on every path out:
//
//	data, err := port.Read(500 * time.Millisecond)
//	if err == nil && data == nil {
//	    // timeout: the line stayed quiet
//	}
//
// A timeout of zero or less polls without blocking. ReadContext and
// ExecContext bound the wait with a context instead and return ctx.Err()
// when it expires.
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	port, err := serialio.Open("/dev/ttyUSB0",
//	    serialio.WithBaudRate(9600),
//	    serialio.WithParity(serialio.ParityEven),
//	    serialio.WithStopBits(2),
//	    serialio.WithBytesHandler(feed),
//	)
//
// # Port Discovery and Registration
//
// AvailablePorts lists what the transport discovers. Endpoints the
// platform cannot enumerate (virtual links, pseudo-terminals) are made
// visible with AddPorts; while any identifiers are registered the
// registered set is authoritative and discovery is suppressed.
// ResetPorts clears the registry and returns to discovery:
//
//	serialio.AddPorts("/dev/pts/3", "/dev/pts/4")
//	ports, _ := serialio.AvailablePorts()
//
// # Transports and Hubs
//
// The package-level functions operate on a default Hub over the system
// transport. A Hub binds a Transport implementation to its own registry,
// so alternative backends plug in without touching process-wide state.
// The built-in Loopback transport provides in-memory endpoint pairs:
//
//	lb := serialio.NewLoopback()
//	lb.CreatePair("left", "right")
//	hub := serialio.NewHub(lb)
//	left, _ := hub.Open("left")
//	right, _ := hub.Open("right")
//
// # Error Handling
//
// Open failures are distinguishable with errors.Is:
//
//	_, err := serialio.Open(id)
//	switch {
//	case errors.Is(err, serialio.ErrUnknownPort):
//	    // identifier not known; AddPorts registers hidden endpoints
//	case errors.Is(err, serialio.ErrPortBusy):
//	    // held by another connection
//	case errors.Is(err, serialio.ErrUnsupportedParameters):
//	    // the device rejected the requested line mode
//	}
//
// An elapsed read timeout is not an error; it returns an absent result so
// quiet lines stay distinguishable from broken ones.
//
// # Concurrency Model
//
// Handler installation is atomic. Deliveries on one port are serialized
// on a goroutine the transport owns and always go to the handler current
// at delivery time. A blocking read swaps in a one-shot delivery handler
// and swaps the previous handler back afterwards; a notification racing
// the swap itself may still land on the prior handler. Keep one blocking
// wait outstanding per port.
package serialio
