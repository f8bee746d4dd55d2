package montecarlo

import "math/rand/v2"

// pcgStream fija la secuencia del PCG; la semilla del usuario es el estado.
const pcgStream = 0x6f666674616b65

// NewSource devuelve la fuente pseudoaleatoria reproducible para una semilla.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, pcgStream)
}

// DeriveSeed deriva la semilla del paso index de un sweep (splitmix64).
// Cada paso tiene su propia fuente, así el resultado no depende de cuántos
// workers ni en qué orden procesen los pasos.
func DeriveSeed(seed uint64, index int) uint64 {
	z := seed + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
