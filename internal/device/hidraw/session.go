package hidraw

import (
	"os"
)

// session is an open hidraw character device.
type session struct {
	f            *os.File
	manufacturer string
	product      string
	serial       string
}

func (s *session) Manufacturer() (string, error) { return s.manufacturer, nil }
func (s *session) Product() (string, error)      { return s.product, nil }
func (s *session) SerialNumber() (string, error) { return s.serial, nil }

// Write sends one report. The first byte of p is the report ID.
func (s *session) Write(p []byte) (int, error) { return s.f.Write(p) }

func (s *session) Close() error { return s.f.Close() }
