package csvstream

import "strconv"

// serializer turns records into dialect-correct bytes. It is the inverse of
// the tokenizer and shares its Dialect.
type serializer struct {
	d *Dialect
}

// appendRecord renders rec followed by the configured terminator onto dst.
func (s *serializer) appendRecord(dst []byte, rec Record) ([]byte, error) {
	var err error
	for i, f := range rec {
		if i > 0 {
			dst = append(dst, s.d.delimiter)
		}
		dst, err = s.appendField(dst, f)
		if err != nil {
			return dst, err
		}
	}
	return append(dst, s.d.terminator...), nil
}

func (s *serializer) appendField(dst []byte, f string) ([]byte, error) {
	if s.d.quoting == QuoteNone {
		return s.appendEscaped(dst, f)
	}
	if s.needsQuote(f) {
		return s.appendQuoted(dst, f)
	}
	return append(dst, f...), nil
}

// needsQuote applies the quoting-mode policy. Every mode except QuoteNone
// still quotes a field holding special bytes, so output always reparses to
// the same record.
func (s *serializer) needsQuote(f string) bool {
	switch s.d.quoting {
	case QuoteAll:
		return true
	case QuoteNonNumeric:
		return !isNumeric(f)
	case QuoteNotNull:
		return f != ""
	case QuoteStrings:
		return (f != "" && !isNumeric(f)) || s.containsSpecial(f)
	default: // QuoteMinimal
		return s.containsSpecial(f)
	}
}

func (s *serializer) containsSpecial(f string) bool {
	for i := 0; i < len(f); i++ {
		switch f[i] {
		case s.d.delimiter, s.d.quote, '\n', '\r':
			return true
		}
	}
	return false
}

func (s *serializer) appendQuoted(dst []byte, f string) ([]byte, error) {
	d := s.d
	dst = append(dst, d.quote)
	for i := 0; i < len(f); i++ {
		c := f[i]
		switch {
		case c == d.quote:
			if d.doubleQuote {
				dst = append(dst, d.quote, d.quote)
				continue
			}
			if d.escape != 0 {
				dst = append(dst, d.escape, c)
				continue
			}
			return dst, ErrQuoteRequired
		case d.escape != 0 && c == d.escape:
			dst = append(dst, d.escape, c)
			continue
		}
		dst = append(dst, c)
	}
	return append(dst, d.quote), nil
}

// appendEscaped renders a field under QuoteNone, escaping every special byte
// individually.
func (s *serializer) appendEscaped(dst []byte, f string) ([]byte, error) {
	d := s.d
	for i := 0; i < len(f); i++ {
		c := f[i]
		special := c == d.delimiter || c == d.quote || c == '\n' || c == '\r' ||
			(d.escape != 0 && c == d.escape)
		if special {
			if d.escape == 0 {
				return dst, ErrQuoteRequired
			}
			dst = append(dst, d.escape)
		}
		dst = append(dst, c)
	}
	return dst, nil
}

func isNumeric(f string) bool {
	if f == "" {
		return false
	}
	_, err := strconv.ParseFloat(f, 64)
	return err == nil
}
