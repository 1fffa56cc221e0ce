package sensor_test

import (
	"errors"
	"testing"

	"github.com/bryggansbryggeri/bryggio-go/internal/sensor"
)

func TestVerifyAddress_LiteralCases(t *testing.T) {
	if err := sensor.VerifyAddress("28-0416802230ff"); err != nil {
		t.Fatalf("expected valid address, got %v", err)
	}

	err := sensor.VerifyAddress("29-0416802230ff")
	if !errors.Is(err, sensor.ErrInvalidAddressStart) {
		t.Fatalf("expected ErrInvalidAddressStart, got %v", err)
	}

	err = sensor.VerifyAddress("28-4E1F69140")
	if !errors.Is(err, sensor.ErrInvalidAddressLength) {
		t.Fatalf("expected ErrInvalidAddressLength, got %v", err)
	}
}

func TestNewDS18B20Device_RejectsBadAddress(t *testing.T) {
	if _, err := sensor.NewDS18B20Device("garbage", 0); err == nil {
		t.Fatal("expected construction to fail for an invalid address")
	}
}
