package display

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"

	"github.com/openwrist/display/conn"
)

// Conn errors.
var (
	ErrCSPin = errors.New("display: chip select GPIO pin is invalid")
)

// LaneMode selects how many data lanes carry a transfer.
type LaneMode uint8

// Lane modes.
const (
	OneLane  LaneMode = 1
	FourLane LaneMode = 4
)

func (m LaneMode) String() string {
	if m == FourLane {
		return "4-lane"
	}
	return "1-lane"
}

// Conn is the connection interface for communicating with the panel
// controller. Every transfer happens inside a single chip-select window and
// entirely in the requested lane mode.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Reset sets the reset pin to the provided level.
	Reset(gpio.Level) error

	// Write sends a one-byte selector, a 24-bit address and an optional
	// payload. Chip select is deasserted on every exit path.
	Write(mode LaneMode, sel byte, addr uint32, data []byte) error

	// Instruction sends a bare one-byte instruction with no address and no
	// payload. Used only for the lane mode-change opcodes.
	Instruction(mode LaneMode, instr byte) error
}

// QSPIConfig describes the quad SPI bus configuration.
type QSPIConfig struct {
	Bus     int
	Device  int
	Mode    uint8
	SpeedHz uint32
	Reset   gpio.PinOut
	CS      gpio.PinOut
}

// DefaultQSPIConfig are the default configuration values, matching the
// Waveshare ESP32-S3 AMOLED 1.43" wiring brought out on a Pi header.
var DefaultQSPIConfig = QSPIConfig{
	Bus:     0,
	Device:  0,
	SpeedHz: 40_000_000,
}

type qspiConn struct {
	bus   *conn.QSPI
	reset gpio.PinOut
	cs    gpio.PinOut
}

// OpenQSPI opens a spidev-backed quad serial connection with GPIO driven
// chip select and reset lines.
func OpenQSPI(config *QSPIConfig) (Conn, error) {
	if config == nil {
		config = new(QSPIConfig)
		*config = DefaultQSPIConfig
	}

	if config.Reset == nil || config.Reset == gpio.INVALID {
		return nil, ErrResetPin
	}
	if config.CS == gpio.INVALID {
		return nil, ErrCSPin
	}
	if config.SpeedHz == 0 {
		config.SpeedHz = DefaultQSPIConfig.SpeedHz
	}

	c, err := conn.OpenQSPI(config.Bus, config.Device)
	if err != nil {
		return nil, err
	}

	if err = c.SetMode(conn.SPIMode(config.Mode)); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err = c.SetMaxSpeed(int(config.SpeedHz)); err != nil {
		_ = c.Close()
		return nil, err
	}

	return &qspiConn{
		bus:   c,
		reset: config.Reset,
		cs:    config.CS,
	}, nil
}

func (c *qspiConn) String() string {
	return fmt.Sprintf("QSPI bus %s", c.bus)
}

func (c *qspiConn) Close() error {
	return c.bus.Close()
}

func (c *qspiConn) Reset(level gpio.Level) error {
	return c.reset.Out(level)
}

func (c *qspiConn) updateCS(level gpio.Level) error {
	if c.cs == nil {
		return nil
	}
	return c.cs.Out(level)
}

func (c *qspiConn) Write(mode LaneMode, sel byte, addr uint32, data []byte) (err error) {
	if err = c.updateCS(gpio.Low); err != nil {
		return
	}
	defer func() {
		if cerr := c.updateCS(gpio.High); err == nil {
			err = cerr
		}
	}()

	header := [4]byte{sel, byte(addr >> 16), byte(addr >> 8), byte(addr)}
	if len(data) == 0 {
		return c.bus.Message(uint8(mode), header[:])
	}
	return c.bus.Message(uint8(mode), header[:], data)
}

func (c *qspiConn) Instruction(mode LaneMode, instr byte) (err error) {
	if err = c.updateCS(gpio.Low); err != nil {
		return
	}
	defer func() {
		if cerr := c.updateCS(gpio.High); err == nil {
			err = cerr
		}
	}()

	return c.bus.Message(uint8(mode), []byte{instr})
}
