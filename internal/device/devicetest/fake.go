// Package devicetest provides an in-memory device for handshake tests.
package devicetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/leapstack-labs/adpbuild/internal/device"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// Pad simulates an attached pad. It records every write.
type Pad struct {
	VendorID     core.USBID
	ProductID    core.USBID
	Manufacturer string
	Product      string
	Serial       string

	// WriteErr, when set, is returned by Write.
	WriteErr error
	// ShortWrite makes Write report one byte fewer than it was given.
	ShortWrite bool

	mu     sync.Mutex
	writes [][]byte
	opens  int
	closes int
}

// Writes returns a copy of every frame written to the pad.
func (p *Pad) Writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.writes))
	for i, w := range p.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// Opens returns how many sessions were opened.
func (p *Pad) Opens() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opens
}

// Closes returns how many sessions were closed.
func (p *Pad) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

// Opener opens sessions to the pads it holds.
type Opener struct {
	Pads     []*Pad
	Attempts int
}

// Open implements device.Opener.
func (o *Opener) Open(ctx context.Context, vid, pid core.USBID) (device.Session, error) {
	o.Attempts++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, p := range o.Pads {
		if p.VendorID == vid && p.ProductID == pid {
			p.mu.Lock()
			p.opens++
			p.mu.Unlock()
			return &session{pad: p}, nil
		}
	}
	return nil, fmt.Errorf("%s:%s: %w", vid, pid, core.ErrNoDevice)
}

type session struct {
	pad *Pad
}

func (s *session) Manufacturer() (string, error) { return s.pad.Manufacturer, nil }
func (s *session) Product() (string, error)      { return s.pad.Product, nil }
func (s *session) SerialNumber() (string, error) { return s.pad.Serial, nil }

func (s *session) Write(b []byte) (int, error) {
	if s.pad.WriteErr != nil {
		return 0, s.pad.WriteErr
	}
	s.pad.mu.Lock()
	s.pad.writes = append(s.pad.writes, append([]byte(nil), b...))
	s.pad.mu.Unlock()
	if s.pad.ShortWrite {
		return len(b) - 1, nil
	}
	return len(b), nil
}

func (s *session) Close() error {
	s.pad.mu.Lock()
	s.pad.closes++
	s.pad.mu.Unlock()
	return nil
}

// NewFSRioPad returns a pad with the default pad identity.
func NewFSRioPad() *Pad {
	return &Pad{
		VendorID:     device.DefaultVendorID,
		ProductID:    device.DefaultProductID,
		Manufacturer: "DIY",
		Product:      "FSRio Dance Pad",
		Serial:       "ADP-000123",
	}
}
