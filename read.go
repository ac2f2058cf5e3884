package serialio

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// armReply installs a one-shot delivery handler through the same atomic
// slot OnData uses, returning the single-slot cell it fulfills and an
// idempotent restore function that reinstates the handler that was current
// at the swap. Only the first batch lands in the cell; anything delivered
// after it is full is dropped, matching the one-response contract of a
// blocking read.
//
// The swap is atomic but not serialized against in-flight notifications: a
// batch whose handler was loaded just before the swap still goes to the
// previous handler. Likewise a batch arriving between fulfillment and
// restore is consumed by the delivery handler and dropped. Both windows
// are inherent to sharing one handler slot and are accepted.
func (p *port) armReply() (<-chan []byte, func()) {
	cell := make(chan []byte, 1)
	deliver := rawHandler(func(data []byte) {
		select {
		case cell <- data:
		default:
		}
	})
	orig := p.handler.Swap(&deliver)
	var once sync.Once
	restore := func() {
		once.Do(func() {
			p.handler.Store(orig)
		})
	}
	return cell, restore
}

// await blocks on the cell with Read's timeout semantics: nil after the
// timeout, an immediate poll when the timeout is zero or negative.
func await(cell <-chan []byte, timeout time.Duration) []byte {
	if timeout <= 0 {
		select {
		case data := <-cell:
			return data
		default:
			return nil
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case data := <-cell:
		return data
	case <-timer.C:
		return nil
	}
}

// Read borrows the handler slot for at most timeout: it snapshots the
// current handler, installs a delivery handler, blocks for one batch and
// always reinstates the snapshot before returning. At most one blocking
// wait (Read, ReadContext, Exec or ExecContext) may be outstanding per
// port; overlapping waits race on which snapshot gets restored.
func (p *port) Read(timeout time.Duration) ([]byte, error) {
	if p.closed.Load() {
		return nil, ErrPortClosed
	}
	cell, restore := p.armReply()
	defer restore()
	return await(cell, timeout), nil
}

func (p *port) ReadContext(ctx context.Context) ([]byte, error) {
	if p.closed.Load() {
		return nil, ErrPortClosed
	}
	cell, restore := p.armReply()
	defer restore()
	select {
	case data := <-cell:
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Exec writes a request and waits for the response batch. The delivery
// handler is armed before the write so a response cannot outrun the swap
// and vanish into the handler being replaced; payloads that fail coercion
// are rejected before the handler slot is touched.
func (p *port) Exec(data any, timeout time.Duration) ([]byte, error) {
	buf, err := ToBytes(data)
	if err != nil {
		return nil, err
	}
	if p.closed.Load() {
		return nil, ErrPortClosed
	}
	cell, restore := p.armReply()
	defer restore()
	if _, err := p.dev.Write(buf); err != nil {
		return nil, fmt.Errorf("write to %s failed: %w", p.name, err)
	}
	return await(cell, timeout), nil
}

func (p *port) ExecContext(ctx context.Context, data any) ([]byte, error) {
	buf, err := ToBytes(data)
	if err != nil {
		return nil, err
	}
	if p.closed.Load() {
		return nil, ErrPortClosed
	}
	cell, restore := p.armReply()
	defer restore()
	if _, err := p.dev.Write(buf); err != nil {
		return nil, fmt.Errorf("write to %s failed: %w", p.name, err)
	}
	select {
	case data := <-cell:
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
