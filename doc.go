// Package vorbisogg is a streaming decoder for the Ogg container and the
// Vorbis I audio codec carried inside it. It consumes a byte source
// (seekable or not), extracts Ogg pages, reassembles codec packets across
// page boundaries, decodes the Vorbis header trio and subsequent audio
// packets, and writes PCM float32 samples to a caller-supplied sink as one
// slice per channel; samples are not interleaved.
package vorbisogg
