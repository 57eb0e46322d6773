package patch

import (
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// headerGrammar matches the fixed git format-patch header shape:
//
//	From <commit> <date>
//	From: <author>
//	Date: <date>
//	Subject: <subject>        (folded continuation lines allowed)
//	MIME-Version: ...         (optional MIME headers, discarded)
//
//	<body>
//	---
//
// The body is everything up to the first line that is exactly "---".
var headerGrammar = regexp.MustCompile(
	`(?m)^(?P<from>From .+)\n` +
		`(?P<author>From: .+)\n` +
		`(?P<date>Date: .+)\n` +
		`(?P<subject>Subject: .+(?:\n[ \t].*)*)\n` +
		`(?:(?:MIME-Version|Content-Type|Content-Transfer-Encoding): .*\n)*` +
		`(?P<body>(?s:.*?))` +
		`^---\n`,
)

var trailerLine = regexp.MustCompile(`^[\w-]+: \S`)

const signedOffPrefix = "Signed-off-by: "

// Header is the structured metadata block preceding the diff.
// All fields hold raw captured text; Author is not split into name and email.
type Header struct {
	From       string
	Author     string
	Date       string
	Subject    string
	Summary    string
	Signatures []string
}

// parseHeader locates the header in content and returns it together with the
// offset of the first byte after the "---" delimiter.
func parseHeader(content []byte) (Header, int, bool) {
	m := headerGrammar.FindSubmatchIndex(content)
	if m == nil {
		return Header{}, 0, false
	}

	group := func(name string) []byte {
		i := headerGrammar.SubexpIndex(name)
		start, end := m[2*i], m[2*i+1]
		if start < 0 {
			return nil
		}
		return content[start:end]
	}

	summary, signatures := splitBody(string(group("body")))
	h := Header{
		From:       decodeField(group("from")),
		Author:     decodeField(group("author")),
		Date:       decodeField(group("date")),
		Subject:    decodeField(group("subject")),
		Summary:    decodeField([]byte(summary)),
		Signatures: signatures,
	}
	return h, m[1], true
}

// splitBody separates the commit message body into the free-text summary and
// the Signed-off-by lines of the trailer block.
//
// The trailer block is the last paragraph of the body when every line of it
// is a "Token: value" trailer. When that paragraph is the whole body it only
// counts as trailers if it carries a Signed-off-by line, so a one-paragraph
// message such as "Fixes: crash on empty config" stays the summary.
// Everything before the block, with surrounding blank lines removed, is the
// summary, so multi-paragraph messages are kept whole.
func splitBody(body string) (string, []string) {
	body = strings.Trim(body, "\n")
	if body == "" {
		return "", nil
	}

	lines := strings.Split(body, "\n")
	start := len(lines)
	for start > 0 && lines[start-1] != "" {
		start--
	}
	if !isTrailerBlock(lines[start:], start > 0) {
		return body, nil
	}

	var signatures []string
	for _, line := range lines[start:] {
		if strings.HasPrefix(line, signedOffPrefix) {
			signatures = append(signatures, decodeField([]byte(line)))
		}
	}

	summary := strings.Trim(strings.Join(lines[:start], "\n"), "\n")
	return summary, signatures
}

func isTrailerBlock(paragraph []string, hasSummary bool) bool {
	signed := false
	for _, line := range paragraph {
		if !trailerLine.MatchString(line) {
			return false
		}
		if strings.HasPrefix(line, signedOffPrefix) {
			signed = true
		}
	}
	return hasSummary || signed
}

// decodeField returns b as text, or "" when b is not valid UTF-8.
func decodeField(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, _, err := transform.Bytes(encoding.UTF8Validator, b)
	if err != nil {
		return ""
	}
	return string(out)
}
