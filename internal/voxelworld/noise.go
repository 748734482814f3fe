package voxelworld

import "math"

// Deterministic hash-based 2D value noise: an integer avalanche hash over
// lattice coordinates feeding smooth interpolation, rather than an external
// noise dependency.

func hash2(x, z int64, seed int64) uint64 {
	v := uint64(x) + (uint64(z) << 1) + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

// latticeValue returns a value in [0,1] for an integer lattice point.
func latticeValue(x, z int64, seed int64) float64 {
	h := hash2(x, z, seed)
	return float64(h&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// valueNoise2D returns smoothly-interpolated lattice noise in [0,1].
func valueNoise2D(x, z float64, seed int64) float64 {
	x0 := math.Floor(x)
	z0 := math.Floor(z)
	x1 := x0 + 1
	z1 := z0 + 1

	fx := fade(x - x0)
	fz := fade(z - z0)

	v00 := latticeValue(int64(x0), int64(z0), seed)
	v10 := latticeValue(int64(x1), int64(z0), seed)
	v01 := latticeValue(int64(x0), int64(z1), seed)
	v11 := latticeValue(int64(x1), int64(z1), seed)

	i0 := lerp(v00, v10, fx)
	i1 := lerp(v01, v11, fx)
	return lerp(i0, i1, fz)
}

// signedNoise2D remaps valueNoise2D from [0,1] to [-1,1], used where the
// caller needs a signed offset (domain warp, height detail).
func signedNoise2D(x, z float64, seed int64) float64 {
	return valueNoise2D(x, z, seed)*2 - 1
}

// NoiseLayer is one octave band of the layered height field: amplitude times
// a sum of `Octaves` value-noise samples at increasing frequency
// (Lacunarity) and decreasing contribution (Persistence).
type NoiseLayer struct {
	Seed        int64
	Amplitude   float64
	Frequency   float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
}

// Sample evaluates one fractal layer at world position (x,z), already
// warped if domain warp is in use.
func (l NoiseLayer) Sample(x, z float64) float64 {
	amplitude := 1.0
	frequency := l.Frequency
	sum := 0.0
	for o := 0; o < l.Octaves; o++ {
		n := signedNoise2D(x*frequency, z*frequency, l.Seed+int64(o*131))
		sum += n * amplitude
		amplitude *= l.Persistence
		frequency *= l.Lacunarity
	}
	return sum * l.Amplitude
}

// DomainWarp holds the two independent noise channels used to perturb (x,z)
// before height/pathway evaluation. Warping the sample point rather than the
// output breaks up the straight ridgelines and circular cells a raw fractal
// field would otherwise produce.
type DomainWarp struct {
	SeedX, SeedZ int64
	Amplitude    float64
	Octaves      int
}

// Warp returns the perturbed (x,z) coordinates.
func (w DomainWarp) Warp(x, z float64) (wx, wz float64) {
	if w.Amplitude == 0 {
		return x, z
	}
	octaves := w.Octaves
	if octaves <= 0 {
		octaves = 2
	}
	nx := fbm2D(x, z, w.SeedX, octaves)
	nz := fbm2D(x, z, w.SeedZ, octaves)
	return x + w.Amplitude*nx, z + w.Amplitude*nz
}

// fbm2D is a small fixed-persistence/lacunarity fractal helper shared by
// domain warp and the pathway cell noise.
func fbm2D(x, z float64, seed int64, octaves int) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for o := 0; o < octaves; o++ {
		sum += signedNoise2D(x*frequency, z*frequency, seed+int64(o*131)) * amplitude
		norm += amplitude
		amplitude *= 0.5
		frequency *= 2.0
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// smoothstep is the classic Hermite interpolation used for the pathway dip.
func smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
