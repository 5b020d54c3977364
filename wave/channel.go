package wave

// Speaker positions of the WAVEFORMATEXTENSIBLE channel mask.
type Speaker uint32

const (
	FrontLeft          Speaker = 0x0001
	FrontRight         Speaker = 0x0002
	FrontCenter        Speaker = 0x0004
	LowFrequency       Speaker = 0x0008
	BackLeft           Speaker = 0x0010
	BackRight          Speaker = 0x0020
	FrontLeftOfCenter  Speaker = 0x0040
	FrontRightOfCenter Speaker = 0x0080
	BackCenter         Speaker = 0x0100
	SideLeft           Speaker = 0x0200
	SideRight          Speaker = 0x0400
)

var channelMasks = [...]Speaker{
	1: FrontCenter,
	2: FrontLeft | FrontRight,
	3: FrontLeft | FrontRight | BackCenter,
	4: FrontLeft | FrontRight | BackLeft | BackRight,
	5: FrontLeft | FrontRight | FrontCenter | BackLeft | BackRight,
	6: FrontLeft | FrontRight | FrontCenter | LowFrequency | BackLeft | BackRight,
	7: FrontLeft | FrontRight | FrontCenter | LowFrequency | BackLeft | BackRight | BackCenter,
	8: FrontLeft | FrontRight | FrontCenter | LowFrequency | BackLeft | BackRight | FrontLeftOfCenter | FrontRightOfCenter,
}

// ChannelMask returns the default speaker mask for 1 to 8 channels and 0
// for any other count.
func ChannelMask(channels int) uint32 {
	if channels < 1 || channels >= len(channelMasks) {
		return 0
	}
	return uint32(channelMasks[channels])
}
