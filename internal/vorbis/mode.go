package vorbis

// Mode selects a block size and transform mapping for one audio packet
// (spec.md §4.9, Vorbis I spec §6.2).
type Mode struct {
	BlockFlag bool
	Mapping   int
}

// ReadMode parses a mode header (Vorbis I spec §6.2.1).
func ReadMode(r bitReader) (*Mode, error) {
	blockFlagBit, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	_, windowType, err := r.Read(16)
	if err != nil {
		return nil, err
	}
	if windowType != 0 {
		return nil, &Error{Kind: KindInvalidData, Msg: "mode: nonzero window type"}
	}
	_, transformType, err := r.Read(16)
	if err != nil {
		return nil, err
	}
	if transformType != 0 {
		return nil, &Error{Kind: KindInvalidData, Msg: "mode: nonzero transform type"}
	}
	_, mapIdx, err := r.Read(8)
	if err != nil {
		return nil, err
	}
	return &Mode{BlockFlag: blockFlagBit, Mapping: int(mapIdx)}, nil
}

// PacketBlockInfo is the derived geometry for one audio packet (spec.md
// §4.9 "Per-audio-packet header").
type PacketBlockInfo struct {
	N                 int
	LeftHalf          int
	RightHalf         int
	PacketStartIndex  int
	PacketTotalLength int
	PacketValidLength int
	LeftLong          bool
	RightLong         bool
}

// ComputeBlockInfo derives one audio packet's block geometry from its mode
// flag and the block-size flags of its neighbors (spec.md §4.9).
func ComputeBlockInfo(blockFlag bool, prevLong, nextLong bool, blockSize0, blockSize1 int) PacketBlockInfo {
	n := blockSize0
	if blockFlag {
		n = blockSize1
	}

	leftBlock := blockSize0
	if prevLong {
		leftBlock = blockSize1
	}
	rightBlock := blockSize0
	if nextLong {
		rightBlock = blockSize1
	}

	leftHalf := leftBlock / 4
	rightHalf := rightBlock / 4

	packetStart := n/4 - leftHalf
	packetTotal := 3*n/4 + rightHalf
	packetValid := packetTotal - 2*rightHalf

	return PacketBlockInfo{
		N:                 n,
		LeftHalf:          leftHalf,
		RightHalf:         rightHalf,
		PacketStartIndex:  packetStart,
		PacketTotalLength: packetTotal,
		PacketValidLength: packetValid,
		LeftLong:          prevLong,
		RightLong:         nextLong,
	}
}
