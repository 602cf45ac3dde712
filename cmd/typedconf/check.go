package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/typedconf/internal/config/registry"
)

// declaration is one KEY:TYPE[=DEFAULT] argument of the check command.
// TYPE may end in "[]" for a list or "[][]" for a matrix.
type declaration struct {
	key        string
	typeName   string
	kind       registry.Kind
	def        string
	hasDefault bool
}

func parseDeclaration(arg string) (declaration, error) {
	head, def, hasDefault := strings.Cut(arg, "=")
	i := strings.LastIndex(head, ":")
	if i <= 0 || i == len(head)-1 {
		return declaration{}, usagef("declaration %q must look like KEY:TYPE[=DEFAULT]", arg)
	}

	d := declaration{
		key:        head[:i],
		typeName:   head[i+1:],
		kind:       registry.KindScalar,
		def:        def,
		hasDefault: hasDefault,
	}
	switch {
	case strings.HasSuffix(d.typeName, "[][]"):
		d.kind = registry.KindMatrix
		d.typeName = strings.TrimSuffix(d.typeName, "[][]")
	case strings.HasSuffix(d.typeName, "[]"):
		d.kind = registry.KindArray
		d.typeName = strings.TrimSuffix(d.typeName, "[]")
	}

	if _, ok := typeOps[d.typeName]; !ok {
		return declaration{}, usagef("unknown type %q in declaration %q (must be one of %s)", d.typeName, arg, typeNames())
	}
	return d, nil
}

// cmdCheck declares the given settings, writes the defaults of absent
// ones and validates the rest against their declared types.
func cmdCheck(s *session, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usagef("check takes at least one KEY:TYPE[=DEFAULT] declaration")
	}

	reg := registry.New()
	for _, arg := range args {
		d, err := parseDeclaration(arg)
		if err != nil {
			return err
		}
		if err := typeOps[d.typeName].define(reg, d); err != nil {
			return fmt.Errorf("declaration %q: %w", arg, err)
		}
	}

	for _, key := range reg.Apply(s.cfg) {
		text, _ := s.cfg.Text(key)
		fmt.Fprintf(out, "default %s = %s\n", key, text)
	}
	for _, key := range reg.Unknown(s.cfg) {
		fmt.Fprintf(out, "unknown %s\n", key)
	}

	errs := reg.Validate(s.cfg)
	for _, err := range errs {
		fmt.Fprintf(out, "error %v\n", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d settings failed validation", len(errs), reg.Len())
	}

	fmt.Fprintf(out, "ok %d settings\n", reg.Len())
	return nil
}
