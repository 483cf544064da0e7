package task

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"
)

// maxExactFloat is the largest integer a float64 holds without rounding.
const maxExactFloat = 1 << 53

var rewardScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(RewardDecimals), nil)

// bigIntLike covers hexutil.Big and similar wrappers handing out a *big.Int.
type bigIntLike interface {
	ToInt() *big.Int
}

// Normalize converts a registry record into a Task. It fails with
// ErrMalformedRecord when the id, description or reward cannot be coerced.
func Normalize(raw RawTask) (*Task, error) {
	id, err := toBigInt(raw.ID, true)
	if err != nil {
		return nil, malformed("id", "%v", err)
	}
	if id.Sign() < 0 || !id.IsUint64() {
		return nil, malformed("id", "%s out of range", id)
	}

	description, err := toDescription(raw.Description)
	if err != nil {
		return nil, malformed("description", "%v", err)
	}

	reward, err := toReward(raw.Reward)
	if err != nil {
		return nil, malformed("reward", "%v", err)
	}

	return &Task{
		ID:           id.Uint64(),
		Description:  description,
		Reward:       reward,
		Creator:      strings.TrimSpace(raw.Creator),
		Participants: dedupeAddresses(raw.Participants),
		Completed:    raw.Completed,
	}, nil
}

// NormalizeAll normalizes every record, keeping registry order. Malformed
// records are left out of the result and reported in errs.
func NormalizeAll(raws []RawTask) (tasks []*Task, errs []error) {
	tasks = make([]*Task, 0, len(raws))
	for i, raw := range raws {
		t, err := Normalize(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, errs
}

// ScaleReward converts a raw registry reward to decimal units.
func ScaleReward(raw *big.Int) float64 {
	f, _ := new(big.Rat).SetFrac(raw, rewardScale).Float64()
	return f
}

func toReward(v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	raw, err := toBigInt(v, false)
	if err != nil {
		return 0, err
	}
	if raw.Sign() < 0 {
		return 0, fmt.Errorf("negative reward %s", raw)
	}
	return ScaleReward(raw), nil
}

func toDescription(v any) (string, error) {
	var s string
	switch d := v.(type) {
	case string:
		s = d
	case []byte:
		s = string(d)
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("empty")
	}
	return s, nil
}

// toBigInt accepts the numeric encodings registry adapters produce. When
// exact is set, floats that may already have lost precision are refused.
func toBigInt(v any, exact bool) (*big.Int, error) {
	switch n := v.(type) {
	case nil:
		return nil, fmt.Errorf("missing")
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("missing")
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case bigIntLike:
		i := n.ToInt()
		if i == nil {
			return nil, fmt.Errorf("missing")
		}
		return new(big.Int).Set(i), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case float32:
		return floatToBigInt(float64(n), exact)
	case float64:
		return floatToBigInt(n, exact)
	case json.Number:
		return parseInteger(string(n))
	case string:
		return parseInteger(n)
	default:
		return nil, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func floatToBigInt(f float64, exact bool) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not an integer", f)
	}
	if exact && math.Abs(f) > maxExactFloat {
		return nil, fmt.Errorf("%v exceeds exact float range", f)
	}
	i, _ := big.NewFloat(f).Int(nil)
	return i, nil
}

func parseInteger(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	i, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("%q is not an integer", s)
	}
	return i, nil
}

// dedupeAddresses drops blanks and case-insensitive repeats, keeping the
// first spelling seen.
func dedupeAddresses(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	seen := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
