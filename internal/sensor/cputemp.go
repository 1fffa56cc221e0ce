package sensor

import "time"

// cpuTempPath is the fixed Raspberry Pi thermal zone file.
const cpuTempPath = "/sys/class/thermal/thermal_zone0/temp"

// CPUTempDevice reads the host CPU's thermal zone, using the same
// millidegree parsing as DS18B20Device.
type CPUTempDevice struct {
	delay time.Duration
}

func NewCPUTempDevice(delay time.Duration) *CPUTempDevice {
	return &CPUTempDevice{delay: delay}
}

func (c *CPUTempDevice) Read() (float64, error) {
	return readMillidegreeFile(cpuTempPath)
}

func (c *CPUTempDevice) Delay() time.Duration { return c.delay }
