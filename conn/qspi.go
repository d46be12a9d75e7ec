// Package conn implements the raw spidev plumbing for quad serial panels.
package conn

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/openwrist/display/internal/ioctl"
)

const spiDevPath = "/dev/spidev"

// Definitions from <spi/spidev.h>
const (
	spiCPHA = 0x01
	spiCPOL = 0x02
)

type SPIMode uint8

const (
	SPIMode0 SPIMode = (0 | 0)             //nolint:staticcheck
	SPIMode1 SPIMode = (0 | spiCPHA)       //nolint:staticcheck
	SPIMode2 SPIMode = (spiCPOL | 0)       //nolint:staticcheck
	SPIMode3 SPIMode = (spiCPOL | spiCPHA) //nolint:staticcheck
)

const (
	spiIOCMagic       = 0x6b // 'k'
	spiIOCMessage     = 0x00
	spiIOCMode        = 0x6b01
	spiIOCLSBFirst    = 0x6b02
	spiIOCBitsPerWord = 0x6b03
	spiIOCMaxSpeedHz  = 0x6b04
	spiIOCMode32      = 0x6b05
)

// spiTransfer mirrors struct spi_ioc_transfer. TxNBits carries the lane
// count (1, 2 or 4) for the transmit phase of this transfer.
type spiTransfer struct {
	txBuf       uint64
	rxBuf       uint64
	length      uint32
	speedHz     uint32
	delayUsecs  uint16
	bitsPerWord uint8
	csChange    uint8
	txNBits     uint8
	rxNBits     uint8
	pad         uint16
}

// QSPI implements the spidev interface with per-transfer lane control.
type QSPI struct {
	f           *os.File
	fd          uintptr
	mode        SPIMode
	bitsPerWord uint8
	maxSpeedHz  uint32
}

// OpenQSPI opens the numbered spi bus with the numbered device. The device
// often corresponds to the CS pin for that bus, but quad panels usually hang
// off a GPIO chip select instead.
func OpenQSPI(bus, device int) (*QSPI, error) {
	spidev := fmt.Sprintf("%s%d.%d", spiDevPath, bus, device)
	f, err := os.OpenFile(spidev, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	c := &QSPI{
		f:  f,
		fd: f.Fd(),
	}
	if err = ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, &c.mode, spiIOCMode), &c.mode); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err = ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, &c.bitsPerWord, spiIOCBitsPerWord), &c.bitsPerWord); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err = ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, &c.maxSpeedHz, spiIOCMaxSpeedHz), &c.maxSpeedHz); err != nil {
		_ = f.Close()
		return nil, err
	}

	return c, nil
}

func (c *QSPI) Close() error {
	return c.f.Close()
}

func (c *QSPI) String() string {
	return fmt.Sprintf("QSPI mode=%d bits per word=%d max speed=%dHz", c.mode, c.bitsPerWord, c.maxSpeedHz)
}

func (c *QSPI) Mode() SPIMode {
	return c.mode
}

func (c *QSPI) SetMode(mode SPIMode) error {
	mode &= 0x0f

	if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, &mode, spiIOCMode), &mode); err != nil {
		return err
	}

	var test SPIMode
	if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, &test, spiIOCMode), &test); err != nil {
		return err
	}

	if test != mode {
		return fmt.Errorf("conn: QSPI attempted to set mode %#02x, but mode %#02x is in use", mode, test)
	}

	c.mode = mode
	return nil
}

func (c *QSPI) MaxSpeed() int {
	return int(c.maxSpeedHz)
}

func (c *QSPI) SetMaxSpeed(v int) error {
	if v < 0 {
		return nil
	}

	u := uint32(v)
	if c.maxSpeedHz != u {
		if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, &u, spiIOCMaxSpeedHz), &u); err != nil {
			return err
		}
		c.maxSpeedHz = u
	}

	return nil
}

// Message queues the buffers as one spidev message: all transfers run
// back-to-back without chip select toggling in between, each transmitting on
// nbits lanes. The call returns once the kernel has drained the DMA queue.
func (c *QSPI) Message(nbits uint8, bufs ...[]byte) error {
	if len(bufs) == 0 {
		return nil
	}

	transfers := make([]spiTransfer, 0, len(bufs))
	for _, buf := range bufs {
		if len(buf) == 0 {
			continue
		}
		transfers = append(transfers, spiTransfer{
			txBuf:   uint64(uintptr(unsafe.Pointer(&buf[0]))),
			length:  uint32(len(buf)),
			txNBits: nbits,
		})
	}
	if len(transfers) == 0 {
		return nil
	}

	size := uint16(len(transfers) * int(unsafe.Sizeof(spiTransfer{})))
	command := ioctl.Encode(ioctl.Write, size, spiIOCMagic<<8|spiIOCMessage)
	return ioctl.Do(c.fd, command, &transfers[0])
}
