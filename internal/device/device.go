package device

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// Default identity of the pad and its reset report.
const (
	DefaultVendorID      core.USBID = 0x1209
	DefaultProductID     core.USBID = 0xB196
	DefaultResetReportID byte       = 0x3
)

// Session is an open control channel to one device.
type Session interface {
	Manufacturer() (string, error)
	Product() (string, error)
	SerialNumber() (string, error)
	Write(p []byte) (int, error)
	Close() error
}

// Opener opens a session to the first device matching vid and pid.
// It makes exactly one attempt; when nothing matches the error wraps core.ErrNoDevice.
type Opener interface {
	Open(ctx context.Context, vid, pid core.USBID) (Session, error)
}

// Identity holds the strings a device reported during the handshake.
type Identity struct {
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
	Product      string `json:"product" yaml:"product"`
	Serial       string `json:"serial" yaml:"serial"`
}

// Config holds the resetter configuration.
type Config struct {
	VendorID  core.USBID
	ProductID core.USBID
	ReportID  byte
	Logger    *slog.Logger
}

func defaultConfig() Config {
	return Config{
		VendorID:  DefaultVendorID,
		ProductID: DefaultProductID,
		ReportID:  DefaultResetReportID,
		Logger:    slog.New(slog.DiscardHandler),
	}
}

// Option is a functional option for configuring the Resetter.
type Option func(*Config)

// WithIdentity sets the vendor and product ID of the device to reset.
func WithIdentity(vid, pid core.USBID) Option {
	return func(c *Config) {
		c.VendorID = vid
		c.ProductID = pid
	}
}

// WithReportID sets the report ID of the reset command.
func WithReportID(id byte) Option {
	return func(c *Config) {
		c.ReportID = id
	}
}

// WithLogger sets a logger for handshake operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// Resetter commands an attached device into its bootloader.
type Resetter struct {
	opener Opener
	config Config
}

// NewResetter creates a Resetter using opener to reach the device.
func NewResetter(opener Opener, opts ...Option) *Resetter {
	if opener == nil {
		panic("opener cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Resetter{opener: opener, config: cfg}
}

// Frame returns the reset command frame: the report ID with no payload.
func (r *Resetter) Frame() []byte {
	return []byte{r.config.ReportID}
}

// Reset opens the device once, reads its identity strings and writes the reset frame once.
// The device is expected to re-enumerate in bootloader mode; that transition is not awaited.
func (r *Resetter) Reset(ctx context.Context) (Identity, error) {
	log := r.config.Logger.With("vid", r.config.VendorID.String(), "pid", r.config.ProductID.String())

	sess, err := r.opener.Open(ctx, r.config.VendorID, r.config.ProductID)
	if err != nil {
		return Identity{}, fmt.Errorf("open device %s:%s: %w", r.config.VendorID, r.config.ProductID, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("close device", "error", cerr)
		}
	}()

	var id Identity
	if id.Manufacturer, err = sess.Manufacturer(); err != nil {
		return Identity{}, fmt.Errorf("read manufacturer string: %w", err)
	}
	if id.Product, err = sess.Product(); err != nil {
		return Identity{}, fmt.Errorf("read product string: %w", err)
	}
	if id.Serial, err = sess.SerialNumber(); err != nil {
		return Identity{}, fmt.Errorf("read serial number string: %w", err)
	}

	log.Info("device found",
		"manufacturer", id.Manufacturer,
		"product", id.Product,
		"serial", id.Serial,
	)

	frame := r.Frame()
	n, err := sess.Write(frame)
	if err != nil {
		return id, fmt.Errorf("write reset report: %w", err)
	}
	if n != len(frame) {
		return id, &ShortWriteError{Expected: len(frame), Written: n}
	}

	log.Info("reset report sent", "report_id", fmt.Sprintf("0x%02X", r.config.ReportID))
	return id, nil
}
