package sensor

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidAddressStart is returned when an address doesn't begin with the
// DS18B20 family code "28".
var ErrInvalidAddressStart = errors.New("ds18b20: address must start with \"28\"")

// ErrInvalidAddressLength is returned when an address isn't exactly 15
// characters.
var ErrInvalidAddressLength = errors.New("ds18b20: address must be 15 characters")

const ds18b20AddressLength = 15

// VerifyAddress checks the DS18B20 1-Wire address grammar: exactly 15
// characters, starting with the "28" family code.
func VerifyAddress(addr string) error {
	if !strings.HasPrefix(addr, "28") {
		return fmt.Errorf("%q: %w", addr, ErrInvalidAddressStart)
	}
	if len(addr) != ds18b20AddressLength {
		return fmt.Errorf("%q: %w", addr, ErrInvalidAddressLength)
	}
	return nil
}

// DS18B20Device reads a file-backed 1-Wire temperature probe. Each read
// opens the address's temperature file fresh; the content is the millidegree
// reading, trimmed and parsed.
type DS18B20Device struct {
	address string
	path    string
	delay   time.Duration
}

// NewDS18B20Device validates the address before returning a usable device.
func NewDS18B20Device(address string, delay time.Duration) (*DS18B20Device, error) {
	if err := VerifyAddress(address); err != nil {
		return nil, err
	}
	return &DS18B20Device{
		address: address,
		path:    fmt.Sprintf("/sys/bus/w1/devices/%s/temperature", address),
		delay:   delay,
	}, nil
}

func (d *DS18B20Device) Read() (float64, error) {
	return readMillidegreeFile(d.path)
}

func (d *DS18B20Device) Delay() time.Duration { return d.delay }

// readMillidegreeFile opens path, trims its content and interprets it as
// millidegrees, returning degrees (milli / 1000, fraction kept).
func readMillidegreeFile(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	trimmed := strings.TrimSpace(string(raw))
	milli, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s content %q: %w", path, trimmed, err)
	}
	return milli / 1000.0, nil
}
