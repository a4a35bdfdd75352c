//go:build !amd64

package blit

// Non-amd64 targets (arm64, etc.) always run the scalar engine: no SSE2/AVX2.
func hasAVX2() bool { return false }
func hasSSE2() bool { return false }
