package pairing

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/fastprodman/gamebridge/internal/infra/metrics"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const (
	codeDigits     = 6
	maxNameLen     = 32
	maxGenAttempts = 16
)

var (
	ErrInvalidCode = fmt.Errorf("pairing code unknown or expired: %w", apperr.ErrUnauthorized)
	errCodeSpace   = fmt.Errorf("%w: no free pairing code", apperr.ErrTransient)
)

// Identity is the in-game player a pairing code stands for.
type Identity struct {
	SubjectID   string
	DisplayName string
}

type entry struct {
	Identity
	expiresAt time.Time
}

// Registry holds short-lived pairing codes in memory. Losing them on restart
// only forces the player to request a new code.
type Registry struct {
	mu        sync.Mutex
	codes     map[string]entry
	bySubject map[string]string
	ttl       time.Duration
	now       func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		codes:     make(map[string]entry),
		bySubject: make(map[string]string),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Start issues a code for the player. A player holds at most one live code;
// asking again replaces the previous one.
func (r *Registry) Start(subjectID, displayName string) (string, time.Time, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return "", time.Time{}, apperr.Invalid("player uuid: %v", err)
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len(displayName) > maxNameLen {
		return "", time.Time{}, apperr.Invalid("player name must be 1..%d characters", maxNameLen)
	}

	subject := id.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.bySubject[subject]; ok {
		delete(r.codes, old)
	}

	code, err := r.freeCode()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := r.now().Add(r.ttl)

	r.codes[code] = entry{Identity: Identity{SubjectID: subject, DisplayName: displayName}, expiresAt: expiresAt}
	r.bySubject[subject] = code

	metrics.PairingCodes.Set(float64(len(r.codes)))

	return code, expiresAt, nil
}

// Lookup returns the identity behind a live code without consuming it.
func (r *Registry) Lookup(code string) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.codes[code]
	if !ok || !r.now().Before(e.expiresAt) {
		return Identity{}, ErrInvalidCode
	}

	return e.Identity, nil
}

// Consume removes code. It reports false when the code was already gone.
func (r *Registry) Consume(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.codes[code]
	if !ok {
		return false
	}

	r.remove(code, e)

	metrics.PairingCodes.Set(float64(len(r.codes)))

	return true
}

// Sweep drops expired codes and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0

	for code, e := range r.codes {
		if !now.Before(e.expiresAt) {
			r.remove(code, e)
			removed++
		}
	}

	metrics.PairingCodes.Set(float64(len(r.codes)))

	return removed
}

// Len is the number of codes held, expired or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.codes)
}

// StartSweeper runs Sweep on a cron schedule until the returned cron is stopped.
func (r *Registry) StartSweeper(schedule string, logger *slog.Logger) (*cron.Cron, error) {
	cl := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	_, err := c.AddFunc(schedule, func() {
		n := r.Sweep()
		if n > 0 {
			logger.Debug("expired pairing codes swept", "count", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule pairing sweep %q: %w", schedule, err)
	}

	c.Start()

	return c, nil
}

func (r *Registry) remove(code string, e entry) {
	delete(r.codes, code)

	if r.bySubject[e.SubjectID] == code {
		delete(r.bySubject, e.SubjectID)
	}
}

// freeCode must be called with mu held.
func (r *Registry) freeCode() (string, error) {
	limit := big.NewInt(1_000_000)

	for range maxGenAttempts {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate pairing code: %w", err)
		}

		code := fmt.Sprintf("%0*d", codeDigits, n.Int64())
		if _, taken := r.codes[code]; !taken {
			return code, nil
		}
	}

	return "", errCodeSpace
}
