package domain

import "math"

// Estrategias de offtake por defecto.
const (
	StrategyCfD      = "CfD"
	StrategyPPA      = "PPA"
	StrategyMerchant = "Merchant"
)

// StrategyProfile es una estrategia reducida a su distribución de valor:
// Normal(MeanValue, Spread). Spread 0 = valor constante.
type StrategyProfile struct {
	Name      string
	MeanValue float64
	Spread    float64
}

// Validate comprueba que el perfil puede muestrearse.
func (p StrategyProfile) Validate() error {
	if p.Name == "" {
		return invalidf("profile name is empty")
	}
	if math.IsNaN(p.MeanValue) || math.IsInf(p.MeanValue, 0) {
		return invalidf("profile %q: mean_value must be finite", p.Name)
	}
	if math.IsNaN(p.Spread) || math.IsInf(p.Spread, 0) || p.Spread < 0 {
		return invalidf("profile %q: spread must be finite and >= 0, got %v", p.Name, p.Spread)
	}
	return nil
}

// ValidateProfiles valida un conjunto de perfiles: no vacío, nombres únicos y
// cada perfil válido. El orden del slice es el orden de desempate.
func ValidateProfiles(profiles []StrategyProfile) error {
	if len(profiles) == 0 {
		return invalidf("no strategy profiles")
	}
	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return invalidf("duplicate profile name %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// ProfileNames devuelve los nombres en el orden de entrada.
func ProfileNames(profiles []StrategyProfile) []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}

// DefaultProfiles devuelve el escenario de referencia CfD / PPA / Merchant.
func DefaultProfiles() []StrategyProfile {
	return []StrategyProfile{
		{Name: StrategyCfD, MeanValue: 80, Spread: 5},
		{Name: StrategyPPA, MeanValue: 65, Spread: 8},
		{Name: StrategyMerchant, MeanValue: 75, Spread: 10},
	}
}
