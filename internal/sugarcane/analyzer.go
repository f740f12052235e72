// Package sugarcane classifies weather conditions against fixed agronomic
// thresholds for sugarcane cultivation.
package sugarcane

import "fmt"

// FactorStatus grades a single evaluated parameter.
type FactorStatus string

const (
	StatusIdeal     FactorStatus = "ideal"
	StatusGood      FactorStatus = "good"
	StatusAttention FactorStatus = "attention"
	StatusWarning   FactorStatus = "warning"
	StatusCritical  FactorStatus = "critical"
)

// OverallStatus is the reduction of all factor statuses.
type OverallStatus string

const (
	OverallFavorable   OverallStatus = "favorable"
	OverallAttention   OverallStatus = "attention"
	OverallUnfavorable OverallStatus = "unfavorable"
)

// AlertSeverity ranks noteworthy conditions surfaced alongside factors.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// WeatherSnapshot is the flat view of current conditions the analyzer
// evaluates. WindSpeed is in km/h, matching the upstream unit the lodging
// threshold was calibrated against.
type WeatherSnapshot struct {
	Temperature   float64
	Humidity      float64
	Precipitation float64
	WindSpeed     float64
	UVIndex       *float64
}

// Factor is the assessment of one evaluated parameter. Exactly one factor
// is produced per parameter; factors are never merged.
type Factor struct {
	Parameter      string       `json:"parameter"`
	Status         FactorStatus `json:"status"`
	Message        string       `json:"message"`
	Recommendation string       `json:"recommendation"`
}

// Alert flags a noteworthy condition. Alerts are a subset of conditions,
// not one-to-one with factors.
type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// Analysis is the full assessment for a snapshot.
type Analysis struct {
	OverallStatus  OverallStatus `json:"overall_status"`
	Recommendation string        `json:"growth_stage_recommendation"`
	Factors        []Factor      `json:"factors"`
	Alerts         []Alert       `json:"alerts"`
}

// Fixed domain thresholds. Within a parameter the branch order is
// significant: critical and ideal bands are checked before the generic
// outside-ideal-range catch-all.
const (
	tempIdealMin    = 21.0
	tempIdealMax    = 34.0
	tempCriticalLow = 15.0
	tempCriticalHi  = 38.0

	humidityIdealMin  = 60.0
	humidityIdealMax  = 85.0
	humidityFungalMin = 90.0

	windLodgingKmh = 60.0

	uvHighIndex = 6.0
)

// Analyze evaluates a snapshot against the sugarcane thresholds. It is pure:
// the same snapshot always yields the same analysis.
func Analyze(w WeatherSnapshot) Analysis {
	var factors []Factor
	var alerts []Alert

	switch {
	case w.Temperature < tempCriticalLow:
		factors = append(factors, Factor{
			Parameter:      "temperature",
			Status:         StatusCritical,
			Message:        fmt.Sprintf("Temperatura muito baixa (%.1f°C)", w.Temperature),
			Recommendation: "Risco de paralisação do crescimento - proteger brotações",
		})
	case w.Temperature > tempCriticalHi:
		factors = append(factors, Factor{
			Parameter:      "temperature",
			Status:         StatusCritical,
			Message:        fmt.Sprintf("Temperatura muito alta (%.1f°C)", w.Temperature),
			Recommendation: "Estresse térmico - aumentar frequência de irrigação",
		})
	case w.Temperature >= tempIdealMin && w.Temperature <= tempIdealMax:
		factors = append(factors, Factor{
			Parameter:      "temperature",
			Status:         StatusIdeal,
			Message:        fmt.Sprintf("Temperatura ideal para crescimento (%.1f°C)", w.Temperature),
			Recommendation: "Condições ótimas para fotossíntese e desenvolvimento",
		})
	default:
		factors = append(factors, Factor{
			Parameter:      "temperature",
			Status:         StatusAttention,
			Message:        fmt.Sprintf("Temperatura fora da faixa ideal (%.1f°C)", w.Temperature),
			Recommendation: "Monitorar crescimento das plantas",
		})
	}

	switch {
	case w.Humidity > humidityFungalMin:
		factors = append(factors, Factor{
			Parameter:      "humidity",
			Status:         StatusWarning,
			Message:        fmt.Sprintf("Umidade muito alta (%.0f%%)", w.Humidity),
			Recommendation: "Risco elevado de ferrugem e doenças fúngicas",
		})
		alerts = append(alerts, Alert{
			Severity: SeverityWarning,
			Message:  "Umidade crítica - monitorar aparecimento de doenças",
		})
	case w.Humidity >= humidityIdealMin && w.Humidity <= humidityIdealMax:
		factors = append(factors, Factor{
			Parameter:      "humidity",
			Status:         StatusIdeal,
			Message:        fmt.Sprintf("Umidade adequada (%.0f%%)", w.Humidity),
			Recommendation: "Condições favoráveis",
		})
	default:
		factors = append(factors, Factor{
			Parameter:      "humidity",
			Status:         StatusAttention,
			Message:        fmt.Sprintf("Umidade fora da faixa ideal (%.0f%%)", w.Humidity),
			Recommendation: "Monitorar necessidade de irrigação",
		})
	}

	if w.WindSpeed > windLodgingKmh {
		factors = append(factors, Factor{
			Parameter:      "wind",
			Status:         StatusCritical,
			Message:        fmt.Sprintf("Vento forte (%.1f km/h)", w.WindSpeed),
			Recommendation: "Risco de acamamento - vistoriar áreas expostas",
		})
		alerts = append(alerts, Alert{
			Severity: SeverityCritical,
			Message:  "Alerta de vento forte - risco de danos às plantas",
		})
	} else {
		factors = append(factors, Factor{
			Parameter:      "wind",
			Status:         StatusGood,
			Message:        fmt.Sprintf("Vento moderado (%.1f km/h)", w.WindSpeed),
			Recommendation: "Sem riscos relacionados ao vento",
		})
	}

	// UV never produces a factor, only an informational alert.
	if w.UVIndex != nil && *w.UVIndex > uvHighIndex {
		alerts = append(alerts, Alert{
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("UV index alto (%.1f) - favorável para fotossíntese", *w.UVIndex),
		})
	}

	return Analysis{
		OverallStatus:  reduce(factors),
		Recommendation: recommendationFor(reduce(factors)),
		Factors:        factors,
		Alerts:         alerts,
	}
}

// reduce is a pure count-based rule: any critical factor dominates, then any
// warning; evaluation order across parameters does not matter.
func reduce(factors []Factor) OverallStatus {
	var criticals, warnings int
	for _, f := range factors {
		switch f.Status {
		case StatusCritical:
			criticals++
		case StatusWarning:
			warnings++
		}
	}
	switch {
	case criticals > 0:
		return OverallUnfavorable
	case warnings > 0:
		return OverallAttention
	default:
		return OverallFavorable
	}
}

func recommendationFor(s OverallStatus) string {
	switch s {
	case OverallUnfavorable:
		return "Atenção: condições críticas detectadas"
	case OverallAttention:
		return "Monitoramento recomendado"
	default:
		return "Condições favoráveis para crescimento"
	}
}
