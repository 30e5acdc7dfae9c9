package capture

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.starlark.net/starlark"
)

var (
	importLine     = regexp.MustCompile(`^(\s*)import\s+([^#]+?)\s*(#.*)?$`)
	fromImportLine = regexp.MustCompile(`^(\s*)from\s+([\w.]+)\s+import\s+([^#]+?)\s*(#.*)?$`)
	identifier     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// rewriteImports turns Python import statements into plain assignments
// against the predeclared modules, one output line per input line so error
// positions still point into the original script.
func rewriteImports(src string, modules starlark.StringDict) (string, error) {
	lines := strings.Split(src, "\n")
	open := ""
	for i, line := range lines {
		inString := open != ""
		open = scanTripleQuotes(line, open)
		if inString {
			continue
		}

		var (
			out string
			err error
		)
		switch {
		case fromImportLine.MatchString(line):
			m := fromImportLine.FindStringSubmatch(line)
			out, err = rewriteFrom(m[1], m[2], m[3], modules)
		case importLine.MatchString(line):
			m := importLine.FindStringSubmatch(line)
			out, err = rewriteImport(m[1], m[2], modules)
		default:
			continue
		}
		if err != nil {
			return "", fmt.Errorf("line %d: %w", i+1, err)
		}
		lines[i] = out
	}
	return strings.Join(lines, "\n"), nil
}

// scanTripleQuotes returns the triple-quote delimiter still open at the end
// of line, given the one open at its start ("" for none). Single-quoted
// strings and comments are skipped so their contents cannot open one.
func scanTripleQuotes(line, open string) string {
	for i := 0; i < len(line); i++ {
		if open != "" {
			if line[i] == '\\' {
				i++
				continue
			}
			if strings.HasPrefix(line[i:], open) {
				i += len(open) - 1
				open = ""
			}
			continue
		}
		switch c := line[i]; c {
		case '#':
			return ""
		case '"', '\'':
			delim := strings.Repeat(string(c), 3)
			if strings.HasPrefix(line[i:], delim) {
				open = delim
				i += 2
				continue
			}
			// single-line string: skip to its closing quote
			for i++; i < len(line) && line[i] != c; i++ {
				if line[i] == '\\' {
					i++
				}
			}
		}
	}
	return open
}

// rewriteImport handles "import a, b as c".
func rewriteImport(indent, clause string, modules starlark.StringDict) (string, error) {
	var stmts []string
	for _, part := range strings.Split(clause, ",") {
		name, alias, err := splitAlias(part)
		if err != nil {
			return "", err
		}
		if _, ok := modules[name]; !ok {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedImport, name)
		}
		if alias != name {
			stmts = append(stmts, alias+" = "+name)
		}
	}
	return statement(indent, stmts), nil
}

// rewriteFrom handles "from m import a, b as c" and "from m import *".
func rewriteFrom(indent, module, clause string, modules starlark.StringDict) (string, error) {
	if module == "__future__" {
		return statement(indent, nil), nil
	}
	mod, ok := modules[module]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImport, module)
	}
	clause = strings.TrimSpace(clause)
	clause = strings.TrimSuffix(strings.TrimPrefix(clause, "("), ")")

	if strings.TrimSpace(clause) == "*" {
		names := memberNames(mod)
		if len(names) == 0 {
			return "", fmt.Errorf("%w: cannot expand %s.*", ErrUnsupportedImport, module)
		}
		stmts := make([]string, len(names))
		for i, n := range names {
			stmts[i] = n + " = " + module + "." + n
		}
		return statement(indent, stmts), nil
	}

	var stmts []string
	for _, part := range strings.Split(clause, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		name, alias, err := splitAlias(part)
		if err != nil {
			return "", err
		}
		stmts = append(stmts, alias+" = "+module+"."+name)
	}
	return statement(indent, stmts), nil
}

func splitAlias(part string) (name, alias string, err error) {
	fields := strings.Fields(part)
	switch {
	case len(fields) == 1:
		name, alias = fields[0], fields[0]
	case len(fields) == 3 && fields[1] == "as":
		name, alias = fields[0], fields[2]
	default:
		return "", "", fmt.Errorf("%w: malformed import %q", ErrUnsupportedImport, strings.TrimSpace(part))
	}
	if !identifier.MatchString(name) || !identifier.MatchString(alias) {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedImport, strings.TrimSpace(part))
	}
	return name, alias, nil
}

func memberNames(v starlark.Value) []string {
	attrs, ok := v.(starlark.HasAttrs)
	if !ok {
		return nil
	}
	var names []string
	for _, n := range attrs.AttrNames() {
		if !strings.HasPrefix(n, "_") {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func statement(indent string, stmts []string) string {
	if len(stmts) == 0 {
		return indent + "pass"
	}
	return indent + strings.Join(stmts, "; ")
}
