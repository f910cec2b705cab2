package compress

import (
	"fmt"
	"testing"
)

// benchPayloads maps payload shapes seen in real voice builds to fixtures:
// question text compresses well, packed codes are dense, silence collapses.
func benchPayloads(size int) map[string][]byte {
	return map[string][]byte{
		"question_text": questionText(size / 49),
		"packed_codes":  packedCodes(size),
		"silence":       silenceFrames(size),
	}
}

func BenchmarkCodecs_Compress(b *testing.B) {
	const size = 64 * 1024

	for codecName, codec := range allCodecs() {
		for shape, data := range benchPayloads(size) {
			b.Run(fmt.Sprintf("%s/%s", codecName, shape), func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(data)))

				for b.Loop() {
					if _, err := codec.Compress(data); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkCodecs_Decompress(b *testing.B) {
	const size = 64 * 1024

	for codecName, codec := range allCodecs() {
		for shape, data := range benchPayloads(size) {
			compressed, err := codec.Compress(data)
			if err != nil {
				b.Fatal(err)
			}

			b.Run(fmt.Sprintf("%s/%s", codecName, shape), func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(data)))

				for b.Loop() {
					if _, err := codec.Decompress(compressed); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkCodecs_Ratio reports the compressed size each codec reaches on a
// packed table body, the least compressible payload the module produces.
func BenchmarkCodecs_Ratio(b *testing.B) {
	data := packedCodes(1024 * 1024)

	for codecName, codec := range allCodecs() {
		b.Run(codecName, func(b *testing.B) {
			compressed, err := codec.Compress(data)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportMetric(float64(len(compressed))/float64(len(data))*100, "ratio%")

			b.ReportAllocs()
			b.SetBytes(int64(len(data)))

			for b.Loop() {
				if _, err := codec.Compress(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkZstdDecompress_Sequential mirrors an archive import: a built voice
// carries a few dozen artifacts of roughly 12KB, decoded one after another,
// so the pooled decoder should stay warm across the whole batch.
func BenchmarkZstdDecompress_Sequential(b *testing.B) {
	const payloadSize = 12 * 1024
	data := packedCodes(payloadSize)
	codec := NewZstdCompressor()
	compressed, err := codec.Compress(data)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(compressed)) * 40)

	for b.Loop() {
		for range 40 {
			if _, err := codec.Decompress(compressed); err != nil {
				b.Fatal(err)
			}
		}
	}
}

// BenchmarkZstdDecompress_Parallel measures decoder pool contention when many
// goroutines unpack archives at once.
func BenchmarkZstdDecompress_Parallel(b *testing.B) {
	data := packedCodes(8 * 1024)
	codec := NewZstdCompressor()
	compressed, err := codec.Compress(data)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(compressed)))

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := codec.Decompress(compressed); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkLZ4Compress_Parallel measures lz4.Compressor pool contention.
func BenchmarkLZ4Compress_Parallel(b *testing.B) {
	data := packedCodes(8 * 1024)
	codec := NewLZ4Compressor()

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := codec.Compress(data); err != nil {
				b.Fatal(err)
			}
		}
	})
}
