package correlation

import "fmt"

// Section identifies the part of a transaction a token was found in.
type Section int

const (
	SectionURL Section = iota
	SectionRequestHeader
	SectionRequestBody
	SectionResponseHeader
	SectionResponseBody
)

var sectionNames = [...]string{
	SectionURL:            "URL",
	SectionRequestHeader:  "Request Header",
	SectionRequestBody:    "Request Body",
	SectionResponseHeader: "Response Header",
	SectionResponseBody:   "Response Body",
}

func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return fmt.Sprintf("Section(%d)", int(s))
	}
	return sectionNames[s]
}

// MarshalText encodes the section by name.
func (s Section) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a section name.
func (s *Section) UnmarshalText(b []byte) error {
	for i, name := range sectionNames {
		if name == string(b) {
			*s = Section(i)
			return nil
		}
	}
	return fmt.Errorf("unknown section %q", string(b))
}

// Target returns the name of the response part a rule for this section
// extracts from. Body sections have no target.
func (s Section) Target() (string, bool) {
	switch s {
	case SectionResponseHeader:
		return "response.headers", true
	case SectionRequestHeader:
		return "response.request.headers", true
	case SectionURL:
		return "response.url", true
	}
	return "", false
}
