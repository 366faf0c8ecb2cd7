package stock

import (
	"math"
	"time"
)

// ExpiryStatus clasificación de un lote según su vencimiento.
type ExpiryStatus string

const (
	ExpiryExpired    ExpiryStatus = "EXPIRED"
	ExpiryNearExpiry ExpiryStatus = "NEAR_EXPIRY"
	ExpiryNormal     ExpiryStatus = "NORMAL"
)

// DefaultNearExpiryHorizon ventana de próximo vencimiento por defecto.
const DefaultNearExpiryHorizon = 30 * 24 * time.Hour

// ExpiryMonitor clasifica lotes en vencidos / próximos a vencer / normales. Sin estado persistido.
type ExpiryMonitor struct {
	Horizon time.Duration
}

// NewExpiryMonitor construye el monitor; horizon <= 0 usa DefaultNearExpiryHorizon.
func NewExpiryMonitor(horizon time.Duration) ExpiryMonitor {
	if horizon <= 0 {
		horizon = DefaultNearExpiryHorizon
	}
	return ExpiryMonitor{Horizon: horizon}
}

// IsExpired: un lote que vence exactamente en now ya cuenta como vencido.
func IsExpired(expiry, now time.Time) bool {
	return !expiry.After(now)
}

// Classify aplica las fronteras: expiry <= now vencido; now < expiry <= now+horizon próximo; resto normal.
func (m ExpiryMonitor) Classify(expiry, now time.Time) ExpiryStatus {
	if IsExpired(expiry, now) {
		return ExpiryExpired
	}
	if !expiry.After(now.Add(m.Horizon)) {
		return ExpiryNearExpiry
	}
	return ExpiryNormal
}

// DaysUntil días completos hasta el vencimiento, redondeando hacia abajo.
// Un lote vencido siempre da un valor negativo: vencido hace 12h es -1, vence en 12h es 0.
func DaysUntil(expiry, now time.Time) int {
	days := int(math.Floor(expiry.Sub(now).Hours() / 24))
	if days == 0 && IsExpired(expiry, now) {
		return -1
	}
	return days
}
