package hub75

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/nerrad567/marquee/internal/display"
	"github.com/nerrad567/marquee/internal/infrastructure/config"
)

// Driver scans a HUB75 RGB panel from a Framebuffer.
//
// HUB75 panels have no frame memory: the host clocks two rows of pixel
// data (upper and lower half) through six color lines, latches them, and
// selects the row pair with the address lines, continuously. The driver
// runs that scan in its own goroutine, mirroring whatever frame the
// renderer last published.
//
// Color depth is 1 bit per channel (a channel is lit at >= 50% intensity).
// Brightness control happens upstream in the palette, which scales the
// reference colors before they ever reach the panel.
type Driver struct {
	cfg    config.HardwareConfig
	fb     *display.Framebuffer
	width  int
	height int

	// GPIO line handles. data carries R1,G1,B1,R2,G2,B2; addr carries
	// the row-select bits A..E.
	data *gpiocdev.Lines
	addr *gpiocdev.Lines
	clk  *gpiocdev.Line
	lat  *gpiocdev.Line
	oe   *gpiocdev.Line

	// scratch buffers reused across refreshes
	frame *image.RGBA
	rgb   []int
	rows  []int
}

const (
	// intensityThreshold is the channel value at which a 1-bit pixel turns on.
	intensityThreshold = 128

	// addressLines is the number of row-select bits (A..E). Five bits
	// select 32 row pairs, so the tallest addressable panel is 64 rows.
	addressLines = 5

	// maxPanelHeight is the tallest panel the address lines can scan:
	// one row pair per address.
	maxPanelHeight = (1 << addressLines) * 2
)

// New opens the GPIO lines for a HUB75 panel.
//
// Parameters:
//   - cfg: Hardware configuration (chip, pin map, refresh rate)
//   - fb: Framebuffer to mirror; its geometry defines the panel geometry
//
// Returns:
//   - *Driver: Ready to Run
//   - error: If any GPIO line cannot be requested
func New(cfg config.HardwareConfig, fb *display.Framebuffer) (*Driver, error) {
	bounds := fb.Bounds()
	d := &Driver{
		cfg:    cfg,
		fb:     fb,
		width:  bounds.Dx(),
		height: bounds.Dy(),
		frame:  image.NewRGBA(bounds),
		rgb:    make([]int, 6),
		rows:   make([]int, addressLines),
	}

	if d.height%2 != 0 {
		return nil, fmt.Errorf("hub75: panel height %d must be even", d.height)
	}
	if d.height > maxPanelHeight {
		return nil, fmt.Errorf("hub75: panel height %d exceeds the %d rows addressable over %d row-select lines", d.height, maxPanelHeight, addressLines)
	}

	pins := cfg.Pins
	var err error

	d.data, err = gpiocdev.RequestLines(cfg.GPIOChip,
		[]int{pins.R1, pins.G1, pins.B1, pins.R2, pins.G2, pins.B2},
		gpiocdev.AsOutput(0, 0, 0, 0, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("hub75: requesting data lines: %w", err)
	}

	d.addr, err = gpiocdev.RequestLines(cfg.GPIOChip,
		[]int{pins.A, pins.B, pins.C, pins.D, pins.E},
		gpiocdev.AsOutput(0, 0, 0, 0, 0))
	if err != nil {
		d.releaseLines()
		return nil, fmt.Errorf("hub75: requesting address lines: %w", err)
	}

	d.clk, err = gpiocdev.RequestLine(cfg.GPIOChip, pins.CLK, gpiocdev.AsOutput(0))
	if err != nil {
		d.releaseLines()
		return nil, fmt.Errorf("hub75: requesting clock line: %w", err)
	}

	d.lat, err = gpiocdev.RequestLine(cfg.GPIOChip, pins.LAT, gpiocdev.AsOutput(0))
	if err != nil {
		d.releaseLines()
		return nil, fmt.Errorf("hub75: requesting latch line: %w", err)
	}

	// OE is active-low; start blanked.
	d.oe, err = gpiocdev.RequestLine(cfg.GPIOChip, pins.OE, gpiocdev.AsOutput(1))
	if err != nil {
		d.releaseLines()
		return nil, fmt.Errorf("hub75: requesting output-enable line: %w", err)
	}

	return d, nil
}

// Run scans the panel until ctx is cancelled. It blanks the panel on exit.
//
// Returns:
//   - error: ctx.Err() on cancellation, or the first GPIO write failure
func (d *Driver) Run(ctx context.Context) error {
	refresh := d.cfg.RefreshHz
	if refresh <= 0 {
		refresh = 200
	}
	framePeriod := time.Second / time.Duration(refresh)

	for {
		select {
		case <-ctx.Done():
			d.blank()
			return ctx.Err()
		default:
		}

		start := time.Now()
		d.fb.CopyTo(d.frame)
		if err := d.scanFrame(); err != nil {
			d.blank()
			return err
		}

		if remaining := framePeriod - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// scanFrame shifts one full frame out to the panel, row pair by row pair.
func (d *Driver) scanFrame() error {
	half := d.height / 2

	for row := 0; row < half; row++ {
		// Shift the row pair
		for x := 0; x < d.width; x++ {
			top := d.frame.RGBAAt(x, row)
			bot := d.frame.RGBAAt(x, row+half)

			d.rgb[0] = bit(top.R)
			d.rgb[1] = bit(top.G)
			d.rgb[2] = bit(top.B)
			d.rgb[3] = bit(bot.R)
			d.rgb[4] = bit(bot.G)
			d.rgb[5] = bit(bot.B)

			if err := d.data.SetValues(d.rgb); err != nil {
				return fmt.Errorf("hub75: writing data lines: %w", err)
			}
			if err := d.pulse(d.clk); err != nil {
				return err
			}
		}

		// Blank, select the row, latch, re-enable
		if err := d.oe.SetValue(1); err != nil {
			return fmt.Errorf("hub75: blanking: %w", err)
		}
		for i := range d.rows {
			d.rows[i] = (row >> i) & 1
		}
		if err := d.addr.SetValues(d.rows); err != nil {
			return fmt.Errorf("hub75: writing address lines: %w", err)
		}
		if err := d.pulse(d.lat); err != nil {
			return err
		}
		if err := d.oe.SetValue(0); err != nil {
			return fmt.Errorf("hub75: enabling output: %w", err)
		}
	}

	return nil
}

// pulse raises and lowers a control line.
func (d *Driver) pulse(line *gpiocdev.Line) error {
	if err := line.SetValue(1); err != nil {
		return fmt.Errorf("hub75: pulsing line: %w", err)
	}
	if err := line.SetValue(0); err != nil {
		return fmt.Errorf("hub75: pulsing line: %w", err)
	}
	return nil
}

// blank disables panel output.
func (d *Driver) blank() {
	if d.oe != nil {
		d.oe.SetValue(1) //nolint:errcheck // best effort on shutdown
	}
}

// Close blanks the panel and releases all GPIO lines.
func (d *Driver) Close() error {
	d.blank()
	d.releaseLines()
	return nil
}

// releaseLines closes whichever line handles were opened.
func (d *Driver) releaseLines() {
	if d.data != nil {
		d.data.Close()
	}
	if d.addr != nil {
		d.addr.Close()
	}
	if d.clk != nil {
		d.clk.Close()
	}
	if d.lat != nil {
		d.lat.Close()
	}
	if d.oe != nil {
		d.oe.Close()
	}
}

// bit converts an 8-bit channel to the panel's 1-bit depth.
func bit(v uint8) int {
	if v >= intensityThreshold {
		return 1
	}
	return 0
}
