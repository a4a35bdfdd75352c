package blit

// sse2Engine and avx2Engine currently delegate all work to the scalar
// implementation: this module is pure Go with no hand-written vector
// kernels, so the three engines are behaviorally identical today. They
// exist as distinct types, selected once at init() from hasSSE2/hasAVX2,
// so that a future build adding real SIMD (via a //go:build-gated .s file,
// the way the teacher's internal/dsp/*_amd64.go files do) has somewhere to
// plug in without changing any caller of blit.Active().
type sse2Engine struct{ *scalarEngine }

func newSSE2Engine() *sse2Engine {
	return &sse2Engine{scalarEngine: &scalarEngine{name: "sse2"}}
}

type avx2Engine struct{ *scalarEngine }

func newAVX2Engine() *avx2Engine {
	return &avx2Engine{scalarEngine: &scalarEngine{name: "avx2"}}
}
