package weather

// conditionForCode maps an upstream WMO weather code to a coarse condition
// and an OpenWeatherMap-style icon token. Clear, fog and thunderstorm are
// exact-match codes; cloud and rain categories are ranges. Unmapped codes
// fall back to partly cloudy.
func conditionForCode(code int, isDay bool) Condition {
	suffix := "d"
	if !isDay {
		suffix = "n"
	}

	switch {
	case code == 0:
		return Condition{ID: 800, Main: "Clear", Description: "céu limpo", Icon: "01" + suffix}
	case code == 1:
		return Condition{ID: 801, Main: "Clouds", Description: "poucas nuvens", Icon: "02" + suffix}
	case code == 2:
		return Condition{ID: 802, Main: "Clouds", Description: "nuvens dispersas", Icon: "03" + suffix}
	case code == 3:
		return Condition{ID: 804, Main: "Clouds", Description: "nublado", Icon: "04" + suffix}
	case code == 45 || code == 48:
		return Condition{ID: 741, Main: "Fog", Description: "neblina", Icon: "50" + suffix}
	case (code >= 51 && code <= 55) || (code >= 61 && code <= 65) || (code >= 80 && code <= 82):
		return Condition{ID: 500, Main: "Rain", Description: "chuva", Icon: "10" + suffix}
	case code == 95 || code == 96 || code == 99:
		return Condition{ID: 211, Main: "Thunderstorm", Description: "trovoada", Icon: "11" + suffix}
	default:
		return Condition{ID: 802, Main: "Clouds", Description: "parcialmente nublado", Icon: "03" + suffix}
	}
}
