//go:build amd64

package blit

// hasAVX2/hasSSE2 report CPU feature availability. On amd64, SSE2 is part
// of the baseline ABI so it is always available; AVX2 availability would
// in a production build be probed via CPUID the way
// internal/dsp/cpuid_amd64.go does (that file's init()-time probe runs
// before any dispatch table is read, since cpuid_amd64.go sorts
// alphabetically before the file that reads it). This module has no
// hand-written SIMD kernels behind either engine yet (see engines.go), so
// the probe below is a placeholder seam rather than a real CPUID call —
// flipping it on only changes which Engine.Name() the renderer reports.
func hasAVX2() bool { return false }
func hasSSE2() bool { return true }
