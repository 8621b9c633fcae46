package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/saw4405/splat-replay/internal/apperr"
)

// RateKind tags which variant a Rate holds.
type RateKind string

const (
	RateKindXP     RateKind = "XP"
	RateKindUdemae RateKind = "Udemae"
)

const (
	minXP = 500.0
	maxXP = 5500.0
)

// udemaeOrder is the fixed ordered set of rank symbols, lowest first.
var udemaeOrder = []string{"C-", "C", "C+", "B-", "B", "B+", "A-", "A", "A+", "S", "S+"}

func udemaeRank(s string) (int, bool) {
	for i, v := range udemaeOrder {
		if v == s {
			return i, true
		}
	}
	return 0, false
}

// Rate is an immutable value object: either an XP number in [500, 5500] or
// an Udemae rank drawn from the fixed ordered set. Total order holds within
// the same variant; comparing across variants is an error.
type Rate struct {
	kind   RateKind
	xp     float64
	udemae string
}

// NewXP constructs an XP rate, validating the [500, 5500] range.
func NewXP(xp float64) (Rate, error) {
	if xp < minXP || xp > maxXP {
		return Rate{}, apperr.Validation("rate", fmt.Sprintf("XP must be between %.0f and %.0f", minXP, maxXP))
	}
	return Rate{kind: RateKindXP, xp: xp}, nil
}

// NewUdemae constructs an Udemae rate, validating the rank symbol.
func NewUdemae(rank string) (Rate, error) {
	if _, ok := udemaeRank(rank); !ok {
		return Rate{}, apperr.Validation("rate", "invalid udemae rank: "+rank)
	}
	return Rate{kind: RateKindUdemae, udemae: rank}, nil
}

// ParseRate accepts either a bare numeric string (XP) or a rank symbol
// (Udemae), matching RateBase.create in the Python original.
func ParseRate(value string) (Rate, error) {
	value = strings.TrimSpace(value)
	if xp, err := strconv.ParseFloat(value, 64); err == nil {
		return NewXP(xp)
	}
	return NewUdemae(value)
}

// Kind reports which variant this rate holds.
func (r Rate) Kind() RateKind { return r.kind }

// Label returns the UI/logging label for the rate's variant.
func (r Rate) Label() string {
	if r.kind == RateKindUdemae {
		return "ウデマエ"
	}
	return "XP"
}

func (r Rate) String() string {
	if r.kind == RateKindUdemae {
		return r.udemae
	}
	return strconv.FormatFloat(r.xp, 'f', -1, 64)
}

// ShortString mirrors the Python original's short_str(): hundreds-of-XP for
// XP rates, the bare rank for Udemae.
func (r Rate) ShortString() string {
	if r.kind == RateKindUdemae {
		return r.udemae
	}
	return strconv.Itoa(int(r.xp) / 100)
}

// Compare returns -1/0/1 comparing r to other. Comparing across variants
// returns an error, matching RateBase.compare_rate's TypeError.
func (r Rate) Compare(other Rate) (int, error) {
	if r.kind != other.kind {
		return 0, apperr.New(apperr.KindValidation, "cannot compare XP and Udemae rates")
	}
	if r.kind == RateKindXP {
		switch {
		case r.xp < other.xp:
			return -1, nil
		case r.xp > other.xp:
			return 1, nil
		default:
			return 0, nil
		}
	}
	a, _ := udemaeRank(r.udemae)
	b, _ := udemaeRank(other.udemae)
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equal reports whether two rates are equal, treating cross-variant or
// zero-value comparisons as unequal rather than erroring.
func (r Rate) Equal(other Rate) bool {
	if r.kind != other.kind {
		return false
	}
	cmp, err := r.Compare(other)
	return err == nil && cmp == 0
}

// XPValue returns the numeric XP value; only meaningful when Kind() == RateKindXP.
func (r Rate) XPValue() float64 { return r.xp }

// UdemaeValue returns the rank symbol; only meaningful when Kind() == RateKindUdemae.
func (r Rate) UdemaeValue() string { return r.udemae }

// ToDict serializes the rate the way RateBase.to_dict does in the original.
func (r Rate) ToDict() map[string]any {
	if r.kind == RateKindUdemae {
		return map[string]any{"type": "Udemae", "value": r.udemae}
	}
	return map[string]any{"type": "XP", "value": r.xp}
}

// RateFromDict rehydrates a Rate from a serialized dict, matching
// RateBase.from_dict's validation.
func RateFromDict(data map[string]any) (Rate, error) {
	typ, _ := data["type"].(string)
	switch typ {
	case "XP":
		switch v := data["value"].(type) {
		case float64:
			return NewXP(v)
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Rate{}, apperr.Validation("rate.value", "XP value is not numeric")
			}
			return NewXP(f)
		default:
			return Rate{}, apperr.Validation("rate.value", "XP value is not numeric")
		}
	case "Udemae":
		v, ok := data["value"].(string)
		if !ok {
			return Rate{}, apperr.Validation("rate.value", "Udemae value must be a string")
		}
		return NewUdemae(v)
	default:
		return Rate{}, apperr.Validation("rate.type", "unknown rate type: "+typ)
	}
}
