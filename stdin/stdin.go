// Package stdin defines the three-way stdin descriptor shared by every
// runtime backend: ignore it, pipe a literal string, or stream a file.
package stdin

// Spec describes where a runtime should source the guest's standard
// input from. The zero value is Ignore.
type Spec struct {
	kind kind
	str  string
	path string
}

type kind int

const (
	kindIgnore kind = iota
	kindString
	kindFile
)

// Ignore returns a Spec that connects the guest's stdin to a null device.
func Ignore() Spec { return Spec{kind: kindIgnore} }

// String returns a Spec that pipes the literal bytes of s into the
// guest's stdin.
func String(s string) Spec { return Spec{kind: kindString, str: s} }

// File returns a Spec that streams the contents of the file at path into
// the guest's stdin.
func File(path string) Spec { return Spec{kind: kindFile, path: path} }

// IsIgnore reports whether this Spec ignores stdin.
func (s Spec) IsIgnore() bool { return s.kind == kindIgnore }

// IsString reports whether this Spec carries an inline string, returning
// it alongside ok.
func (s Spec) IsString() (str string, ok bool) {
	return s.str, s.kind == kindString
}

// IsFile reports whether this Spec references a file path, returning it
// alongside ok.
func (s Spec) IsFile() (path string, ok bool) {
	return s.path, s.kind == kindFile
}
