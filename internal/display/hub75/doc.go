// Package hub75 drives a HUB75 RGB LED matrix panel over Linux GPIO
// character-device lines.
//
// The pin map defaults to the Adafruit RGB Matrix Bonnet layout and is
// fully configurable (display.hardware.pins). The driver mirrors the
// renderer's Framebuffer at a fixed refresh rate; it never owns display
// content, only the electrical scan.
//
// A bit-banged scan from user space is timing-coarse: expect some panel
// shimmer at high refresh rates. It is sufficient for a text ticker.
package hub75
