package bonus

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Band is a performance band starting at Min (inclusive) and running up to
// the next band's Min (exclusive). The last band includes 100.
type Band struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
}

type Classifier struct {
	bands []Band
}

// NewClassifier checks that bands start at 0, ascend strictly and stay
// within 0-100, so every score maps to exactly one band.
func NewClassifier(bands []Band) (*Classifier, error) {
	if len(bands) == 0 {
		return nil, ErrInvalidBands.Withf("nenhuma faixa configurada")
	}
	sorted := append([]Band(nil), bands...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })
	if sorted[0].Min != 0 {
		return nil, ErrInvalidBands.Withf("a primeira faixa deve começar em 0")
	}
	names := make(map[string]struct{}, len(sorted))
	for i, b := range sorted {
		if b.Name == "" {
			return nil, ErrInvalidBands.Withf("faixa sem nome")
		}
		if _, dup := names[b.Name]; dup {
			return nil, ErrInvalidBands.Withf("faixa %s repetida", b.Name)
		}
		names[b.Name] = struct{}{}
		if b.Min < 0 || b.Min > 100 || math.IsNaN(b.Min) {
			return nil, ErrInvalidBands.Withf("limite %g fora de 0 a 100", b.Min)
		}
		if i > 0 && b.Min == sorted[i-1].Min {
			return nil, ErrInvalidBands.Withf("faixas %s e %s com o mesmo limite", sorted[i-1].Name, b.Name)
		}
	}
	return &Classifier{bands: sorted}, nil
}

// Classify returns the highest band whose Min is at or below score.
func (c *Classifier) Classify(score float64) (string, error) {
	if math.IsNaN(score) || score < 0 || score > 100 {
		return "", ErrScoreOutOfRange
	}
	for i := len(c.bands) - 1; i >= 0; i-- {
		if score >= c.bands[i].Min {
			return c.bands[i].Name, nil
		}
	}
	return c.bands[0].Name, nil
}

func (c *Classifier) Bands() []Band {
	return append([]Band(nil), c.bands...)
}

func (c *Classifier) has(name string) bool {
	for _, b := range c.bands {
		if b.Name == name {
			return true
		}
	}
	return false
}

// ParseBands reads "name:min,name:min" as used in configuration.
func ParseBands(spec string) ([]Band, error) {
	pairs, err := parsePairs(spec)
	if err != nil {
		return nil, ErrInvalidBands.Withf("%v", err)
	}
	out := make([]Band, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Band{Name: p.name, Min: p.value})
	}
	return out, nil
}

// ParseMultipliers reads "band:multiplier,..." as used in configuration.
func ParseMultipliers(spec string) (map[string]float64, error) {
	pairs, err := parsePairs(spec)
	if err != nil {
		return nil, ErrInvalidMultipliers.Withf("%v", err)
	}
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		out[p.name] = p.value
	}
	return out, nil
}

type pair struct {
	name  string
	value float64
}

func parsePairs(spec string) ([]pair, error) {
	var out []pair
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, raw, ok := strings.Cut(item, ":")
		if !ok {
			return nil, errPairFormat(item)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, errPairFormat(item)
		}
		out = append(out, pair{name: strings.TrimSpace(name), value: value})
	}
	if len(out) == 0 {
		return nil, errPairFormat(spec)
	}
	return out, nil
}

type errPairFormat string

func (e errPairFormat) Error() string {
	return "entrada inválida: " + strconv.Quote(string(e))
}
