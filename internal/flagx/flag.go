// Package flagx helps several independent flag sets share one command line.
// Each config layer filters os.Args down to the flags it owns before parsing,
// so unknown flags from another layer never abort startup.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Filter selects the flags a single flag set owns. Values take an argument
// ("-d dsn" or "-d=dsn"); Switches are booleans that only accept the
// "-seed=false" form and never consume the following token.
// Names are given with one leading dash; "--name" on the command line
// matches as well.
type Filter struct {
	Values   []string
	Switches []string
}

// Apply returns the subset of args owned by f, in their original order.
// A following token that starts with "-" is never taken as a value.
// The result is never nil.
func (f Filter) Apply(args []string) []string {
	kinds := make(map[string]bool, len(f.Values)+len(f.Switches))
	for _, n := range f.Values {
		kinds[canonical(n)] = true
	}
	for _, n := range f.Switches {
		kinds[canonical(n)] = false
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		takesValue, ok := kinds[canonical(name)]
		if !ok {
			continue
		}
		out = append(out, arg)
		if hasValue || !takesValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

func canonical(name string) string {
	return "-" + strings.TrimLeft(name, "-")
}

// FilterArgs is Filter{Values: allowedFlags}.Apply(args).
func FilterArgs(args []string, allowedFlags []string) []string {
	return Filter{Values: allowedFlags}.Apply(args)
}

// ConfigPath extracts the JSON config file path given via -c or -config.
// The last occurrence wins; an empty string means no file was requested.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}
