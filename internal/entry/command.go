package entry

// SplitCommand tokenizes an exec string into argv. Words are separated by
// spaces; single quotes, double quotes, and backticks group words; a
// backslash escapes the following character. Quote characters do not nest.
func SplitCommand(s string) []string {
	type quote byte
	const (
		none   quote = 0
		single quote = '\''
		double quote = '"'
		tick   quote = '`'
	)

	var argv []string
	var buf []byte
	state := none
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			buf = append(buf, c)
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		switch {
		case state == none && c == ' ':
			if len(buf) > 0 {
				argv = append(argv, string(buf))
				buf = buf[:0]
			}
		case state != none && quote(c) == state:
			state = none
			if len(buf) > 0 {
				argv = append(argv, string(buf))
				buf = buf[:0]
			}
		case state == none && (c == '\'' || c == '"' || c == '`'):
			state = quote(c)
		default:
			buf = append(buf, c)
		}
	}
	if len(buf) > 0 || len(argv) == 0 {
		argv = append(argv, string(buf))
	}
	return argv
}
