package demosaic

import(
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Method selects a reconstruction strategy.
type Method int

const(
	None  Method = iota // own sample only, the other channels stay black
	Basic               // bilinear, fixed kernels
	VNG4                // variable number of gradients, 4 color
	AHD                 // adaptive homogeneity directed
	RCD                 // ratio corrected
	AMAZE               // aliasing minimization and zipper elimination
)

var methodNames = []string{"none", "basic", "vng4", "ahd", "rcd", "amaze"}

// Methods lists every method, cheapest first.
func Methods() []Method {
	return lo.Times(len(methodNames), func(i int) Method { return Method(i) })
}

// MethodNames lists the names ParseMethod accepts.
func MethodNames() []string {
	return lo.Map(Methods(), func(m Method, _ int) string { return m.String() })
}

func (m Method)String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

func ParseMethod(s string) (Method, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if i := lo.IndexOf(methodNames, name); i >= 0 {
		return Method(i), nil
	}
	return None, fmt.Errorf("%w: '%s', wanted one of %v", ErrUnknownMethod, s, methodNames)
}

// MarshalYAML and UnmarshalYAML let configs name the method.
func (m Method)MarshalYAML() (interface{}, error) { return m.String(), nil }

func (m *Method)UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Method)strategy(o *Options) (strategy, error) {
	switch m {
	case None:  return noneStrategy{}, nil
	case Basic: return basicStrategy{}, nil
	case VNG4:  return vng4Strategy{}, nil
	case AHD:   return newAHDStrategy(o.Profile), nil
	case RCD:   return rcdStrategy{}, nil
	case AMAZE: return amazeStrategy{}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
}
