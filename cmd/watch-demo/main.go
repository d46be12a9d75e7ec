package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/openwrist/display"
	"github.com/openwrist/display/asset"
	"github.com/openwrist/display/ui"
)

func main() {
	spiBusFlag := flag.Int("spi-bus", display.DefaultQSPIConfig.Bus, "SPI bus")
	spiDeviceFlag := flag.Int("spi-dev", display.DefaultQSPIConfig.Device, "SPI device")
	speedFlag := flag.Int("speed", int(display.DefaultQSPIConfig.SpeedHz), "SPI clock in Hz")
	resetPinFlag := flag.String("reset", "GPIO21", "Reset GPIO pin")
	csPinFlag := flag.String("cs", "GPIO9", "Chip select GPIO pin")
	brightnessFlag := flag.Uint("brightness", 0xFF, "Panel brightness (0-255)")
	assetsFlag := flag.String("assets", "", "Directory with zlib-compressed frame blobs")
	intervalFlag := flag.Duration("interval", 2*time.Second, "Screen cycle interval")
	flag.Parse()

	if _, err := host.Init(); err != nil {
		fatal(err)
	}

	conn, err := display.OpenQSPI(&display.QSPIConfig{
		Bus:     *spiBusFlag,
		Device:  *spiDeviceFlag,
		SpeedHz: uint32(*speedFlag),
		Reset:   gpioreg.ByName(*resetPinFlag),
		CS:      gpioreg.ByName(*csPinFlag),
	})
	if err != nil {
		fatal(err)
	}
	defer conn.Close()
	fmt.Printf("using connection: %s\n", conn)

	output, err := display.NewCO5300(conn, nil)
	if err != nil {
		fatal(err)
	}
	defer output.Close()
	fmt.Printf("using driver: %s\n", output)

	if err = output.SetBrightness(uint8(*brightnessFlag)); err != nil {
		fatal(err)
	}

	// Solid fills exercise the streaming path end to end.
	for _, c := range []color.RGBA{
		{R: 0xFF, A: 0xFF},
		{G: 0xFF, A: 0xFF},
		{B: 0xFF, A: 0xFF},
	} {
		if err = output.Fill(c); err != nil {
			fatal(err)
		}
		time.Sleep(300 * time.Millisecond)
	}

	// Line fan out of the center.
	output.Clear()
	b := output.Bounds()
	cx, cy := b.Dx()/2, b.Dy()/2
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	for x := 0; x < b.Dx(); x += 16 {
		output.DrawLine(cx, cy, x, 0, white, 2)
		output.DrawLine(cx, cy, x, b.Dy()-1, white, 2)
	}
	if err = output.Refresh(); err != nil {
		fatal(err)
	}
	time.Sleep(time.Second)

	blobs, err := loadAssets(*assetsFlag)
	if err != nil {
		fatal(err)
	}
	cache := asset.New(blobs, nil)
	fmt.Printf("asset cache: %d blobs, %d slots\n", len(blobs), cache.Slots())

	renderer := ui.NewRenderer(output, cache, nil)
	state := ui.State{}
	if len(blobs) > 0 {
		state.Page = ui.PageGallery
	}

	fmt.Println("hit control-c to stop...")
	ticker := time.NewTicker(*intervalFlag)
	defer ticker.Stop()
	for range ticker.C {
		if err = renderer.Render(state); err != nil {
			fatal(err)
		}
		state = state.NextItem()
		if state.Item == 0 {
			state = state.NextMenu()
			if len(blobs) == 0 && (state.Page == ui.PageGallery || state.Page == ui.PageInfo) {
				state.Page = ui.PageMain
			}
		}
	}
}

// loadAssets reads every .z blob in dir, in name order.
func loadAssets(dir string) ([][]byte, error) {
	if dir == "" {
		return nil, nil
	}
	names, err := filepath.Glob(filepath.Join(dir, "*.z"))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var blobs [][]byte
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, data)
	}
	return blobs, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
