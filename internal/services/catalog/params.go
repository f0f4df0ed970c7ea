package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/apperr"
)

const (
	MaxAmplifier       = 4
	DefaultDuration    = 30
	MaxDurationSeconds = 600
	MinY               = -64
	MaxY               = 320
	MaxHorizontal      = 30_000_000
)

var ErrInvalidPayload = fmt.Errorf("%w: invalid payload", apperr.ErrInvalidInput)

// Params is the typed payload of an effect. The concrete type is fixed by the
// effect's category.
type Params interface {
	isParams()
}

// NoParams is used by categories that accept no payload.
type NoParams struct{}

func (NoParams) isParams() {}

type StatusEffectParams struct {
	Amplifier       int `json:"amplifier"`
	DurationSeconds int `json:"durationSeconds"`
}

func (StatusEffectParams) isParams() {}

type Coordinates struct {
	X         int    `json:"x"                   yaml:"x"`
	Y         int    `json:"y"                   yaml:"y"`
	Z         int    `json:"z"                   yaml:"z"`
	Dimension string `json:"dimension,omitempty" yaml:"dimension"`
}

// TeleportParams carries a destination, custom or fixed.
type TeleportParams struct {
	Coordinates
}

func (TeleportParams) isParams() {}

// ParseParams decodes and validates the raw payload for effectID.
func (c *Catalog) ParseParams(effectID string, raw json.RawMessage) (Params, error) {
	e, ok := c.effects[effectID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidItem, effectID)
	}

	empty := len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))

	switch e.Category {
	case CategoryStatusEffect:
		p := StatusEffectParams{DurationSeconds: DefaultDuration}
		if !empty {
			err := decodeStrict(raw, &p)
			if err != nil {
				return nil, err
			}
		}

		if p.Amplifier < 0 || p.Amplifier > MaxAmplifier {
			return nil, fmt.Errorf("%w: amplifier must be within 0..%d", ErrInvalidPayload, MaxAmplifier)
		}
		if p.DurationSeconds < 1 || p.DurationSeconds > MaxDurationSeconds {
			return nil, fmt.Errorf("%w: durationSeconds must be within 1..%d", ErrInvalidPayload, MaxDurationSeconds)
		}

		return p, nil

	case CategoryCustomTeleport:
		if empty {
			return nil, fmt.Errorf("%w: destination coordinates required", ErrInvalidPayload)
		}

		var p TeleportParams

		err := decodeStrict(raw, &p.Coordinates)
		if err != nil {
			return nil, err
		}

		err = p.validate()
		if err != nil {
			return nil, err
		}

		return p, nil

	case CategoryTeleport:
		if !empty {
			return nil, fmt.Errorf("%w: %s takes no payload", ErrInvalidPayload, effectID)
		}

		return TeleportParams{Coordinates: *e.Destination}, nil

	default:
		if !empty {
			return nil, fmt.Errorf("%w: %s takes no payload", ErrInvalidPayload, effectID)
		}

		return NoParams{}, nil
	}
}

// Encode renders params as the opaque task payload. Simple effects encode to "".
func Encode(p Params) (string, error) {
	switch v := p.(type) {
	case nil, NoParams:
		return "", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode payload: %w", err)
		}

		return string(b), nil
	}
}

func (p TeleportParams) validate() error {
	if abs(p.X) > MaxHorizontal || abs(p.Z) > MaxHorizontal {
		return fmt.Errorf("%w: x and z must be within ±%d", ErrInvalidPayload, MaxHorizontal)
	}
	if p.Y < MinY || p.Y > MaxY {
		return fmt.Errorf("%w: y must be within %d..%d", ErrInvalidPayload, MinY, MaxY)
	}

	return nil
}

func decodeStrict(raw json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
