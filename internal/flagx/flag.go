// Package flagx lets several components parse their own subset of os.Args
// without tripping over flags that belong to someone else.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the arguments from args that belong to the listed flags.
//
// valueFlags take a value, either as "-f value" or "-f=value". boolFlags never
// consume the following argument; they are kept only in the "-f" or "-f=true"
// forms.
func FilterArgs(args []string, valueFlags []string, boolFlags ...string) []string {
	takesValue := make(map[string]bool, len(valueFlags)+len(boolFlags))
	for _, f := range valueFlags {
		takesValue[f] = true
	}
	for _, f := range boolFlags {
		takesValue[f] = false
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		withValue, known := takesValue[name]
		if !known {
			continue
		}

		filtered = append(filtered, arg)
		if hasValue || !withValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// lookup parses a single string flag (with a long and a short spelling) out of
// os.Args and returns its value, or def when absent.
func lookup(long, short, def string) string {
	value := def

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&value, long, def, "")
	fs.StringVar(&value, short, def, "")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-" + long, "-" + short, "--" + long, "--" + short}))

	return value
}

// ConfigFileFlag returns the JSON config path given with -c or -config,
// or an empty string when neither is present.
func ConfigFileFlag() string {
	return lookup("config", "c", "")
}

// EnvFileFlag returns the dotenv path given with -env-file, defaulting to ".env".
func EnvFileFlag() string {
	return lookup("env-file", "env", ".env")
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
