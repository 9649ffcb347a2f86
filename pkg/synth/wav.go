package synth

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WAVのRIFF構造は3つのチャンクからなる:
//
//	RIFFチャンク(12byte) + fmtチャンク(24byte) + dataチャンク(8byte + PCM)
//
// fmtチャンクのフォーマットタイプはPCMなら1。全フィールドはリトル
// エンディアン。
const (
	riffChunkSizeBaseOffset = 36 // RIFFChunk(12byte) + fmtChunk(24byte)
	fmtChunkDataSize        = 16
	wavFormatPCM            = 1
)

// WriteWAV writes interleaved 16-bit stereo samples as a PCM WAV file.
func WriteWAV(w io.Writer, sampleRate int32, samples []int16) error {
	const channels = 2
	const bitsPerSample = 16

	dataSize := uint32(len(samples) * 2)

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], riffChunkSizeBaseOffset+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], fmtChunkDataSize)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate)*channels*bitsPerSample/8)
	binary.LittleEndian.PutUint16(header[32:34], channels*bitsPerSample/8)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}

	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	return nil
}
