package service

import (
	"context"
	"net/netip"
	"strings"
	"sync"
	"time"
)

// LoginRateLimiter limita los intentos de login por IP de cliente.
type LoginRateLimiter interface {
	// Allow registra un intento. Si lo rechaza, devuelve cuanto falta para el proximo permitido.
	Allow(ctx context.Context, clientIP string) (bool, time.Duration)
}

// normalizeClientIP deja una forma canonica para que ::ffff:1.2.3.4 y 1.2.3.4 compartan cupo.
func normalizeClientIP(clientIP string) string {
	clientIP = strings.TrimSpace(clientIP)
	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return strings.ToLower(clientIP)
	}
	return addr.Unmap().String()
}

type loginRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	attempts  map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewLoginRateLimiter crea un limitador en memoria con ventana deslizante por IP.
// Sirve para una sola replica; con varias hace falta el de Redis.
func NewLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &loginRateLimiter{
		window:   window,
		max:      max,
		attempts: make(map[string][]time.Time),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (l *loginRateLimiter) Allow(_ context.Context, clientIP string) (bool, time.Duration) {
	ip := normalizeClientIP(clientIP)
	if ip == "" {
		return false, l.window
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)

	recent := attemptsSince(l.attempts[ip], now.Add(-l.window))
	if len(recent) >= l.max {
		l.attempts[ip] = recent
		return false, recent[0].Add(l.window).Sub(now)
	}
	l.attempts[ip] = append(recent, now)
	return true, 0
}

// sweep elimina las IPs sin intentos dentro de la ventana. Corre como mucho una vez por ventana.
func (l *loginRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	cutoff := now.Add(-l.window)
	for ip, ts := range l.attempts {
		if len(attemptsSince(ts, cutoff)) == 0 {
			delete(l.attempts, ip)
		}
	}
}

// attemptsSince asume ts ordenado (se agrega siempre al final).
func attemptsSince(ts []time.Time, cutoff time.Time) []time.Time {
	for i, t := range ts {
		if t.After(cutoff) {
			return ts[i:]
		}
	}
	return nil
}

func (l *loginRateLimiter) trackedIPs() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}
