package analysis

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/virtdrone/internal/sim"
)

// FFT is a radix-2 transform. Input whose length is not a power of two is
// zero padded.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if p := nextPow2(n); p != n {
		padded := make([]float64, p)
		copy(padded, data)
		data = padded
		n = p
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func PowerSpectrum(data []float64) []float64 {
	fft := FFT(data)
	ps := make([]float64, len(fft)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}

	return ps
}

// ErrorSpectrum is the power spectrum of altitude minus target, with the
// mean removed. freqs are in Hz and assume the dt of the first sample.
func ErrorSpectrum(samples []sim.Telemetry) (freqs, power []float64) {
	if len(samples) < 2 || samples[0].Dt <= 0 {
		return nil, nil
	}

	errs := make([]float64, len(samples))
	mean := 0.0
	for i, t := range samples {
		errs[i] = t.AltitudeM - t.TargetM
		mean += errs[i]
	}
	mean /= float64(len(errs))
	for i := range errs {
		errs[i] -= mean
	}

	power = PowerSpectrum(errs)
	n := nextPow2(len(errs))
	freqs = make([]float64, len(power))
	for i := range freqs {
		freqs[i] = float64(i) / (float64(n) * samples[0].Dt)
	}
	return freqs, power
}

// DominantFrequency returns the frequency of the largest non-DC bin.
func DominantFrequency(freqs, power []float64) float64 {
	best, bestIdx := 0.0, 0
	for i := 1; i < len(power) && i < len(freqs); i++ {
		if power[i] > best {
			best, bestIdx = power[i], i
		}
	}
	if bestIdx == 0 {
		return 0
	}
	return freqs[bestIdx]
}
