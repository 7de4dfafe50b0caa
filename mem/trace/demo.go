package trace

var demoTrace = []uint16{
	0x0000, 0x0004, 0x000c, 0x2200, 0x00d0, 0x00e0, 0x1130,
	0x0028, 0x113c, 0x2204, 0x0010, 0x0020, 0x0004, 0x0040,
	0x2208, 0x0008, 0x00a0, 0x0004, 0x1104, 0x0028, 0x000c,
	0x0084, 0x000c, 0x3390, 0x00b0, 0x1100, 0x0028, 0x0064,
	0x0070, 0x00d0, 0x0008, 0x3394,
}

// DemoTrace returns the 32-address trace used by the canonical experiments.
// The caller owns the returned slice.
func DemoTrace() []uint16 {
	addrs := make([]uint16, len(demoTrace))
	copy(addrs, demoTrace)

	return addrs
}
