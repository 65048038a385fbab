package main

import(
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/abworrall/rawdev/pkg/demosaic"
)

// methodValue lets --method take a method name.
type methodValue struct{ m *demosaic.Method }

var _ pflag.Value = methodValue{}

func (v methodValue)String() string {
	if v.m == nil {
		return ""
	}
	return v.m.String()
}

func (v methodValue)Set(s string) error {
	m, err := demosaic.ParseMethod(s)
	if err != nil {
		return err
	}
	*v.m = m
	return nil
}

func (v methodValue)Type() string { return "method" }

// methodsValue is a comma separated list of methods.
type methodsValue struct{ ms *[]demosaic.Method }

func (v methodsValue)String() string {
	if v.ms == nil {
		return ""
	}
	names := []string{}
	for _, m := range *v.ms {
		names = append(names, m.String())
	}
	return strings.Join(names, ",")
}

func (v methodsValue)Set(s string) error {
	ms := []demosaic.Method{}
	for _, name := range strings.Split(s, ",") {
		m, err := demosaic.ParseMethod(name)
		if err != nil {
			return err
		}
		ms = append(ms, m)
	}
	*v.ms = ms
	return nil
}

func (v methodsValue)Type() string { return "methods" }

// cfaValue takes a preset name or a hex code, and keeps the canonical
// form.
type cfaValue struct{ s *string }

func (v cfaValue)String() string {
	if v.s == nil {
		return ""
	}
	return *v.s
}

func (v cfaValue)Set(s string) error {
	cfa, err := demosaic.ParseCFA(s)
	if err != nil {
		return err
	}
	*v.s = cfa.String()
	if strings.HasPrefix(*v.s, "CFA(") {
		*v.s = fmt.Sprintf("0x%08x", uint32(cfa))
	}
	return nil
}

func (v cfaValue)Type() string { return "cfa" }
