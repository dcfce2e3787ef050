package password

import "strings"

// Shape summarises which classes a password's characters belong to.
type Shape struct {
	Length int
	// Counts is aligned with the inspected policy's Classes.
	Counts []int
	// Foreign counts characters outside every class.
	Foreign int
}

// Inspect classifies each character of pw against p. A character that appears
// in several alphabets is counted for the first one.
func Inspect(pw string, p Policy) Shape {
	s := Shape{Length: len(pw), Counts: make([]int, len(p.Classes))}

next:
	for i := 0; i < len(pw); i++ {
		for ci, c := range p.Classes {
			if strings.IndexByte(c.Alphabet, pw[i]) >= 0 {
				s.Counts[ci]++
				continue next
			}
		}
		s.Foreign++
	}

	return s
}

// Conforms reports whether pw has the target length, meets every class
// minimum and contains nothing outside the alphabets.
func Conforms(pw string, p Policy) bool {
	s := Inspect(pw, p)
	if s.Length != p.Length || s.Foreign != 0 {
		return false
	}
	for i, c := range p.Classes {
		if s.Counts[i] < c.Min {
			return false
		}
	}
	return true
}
